package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"lobforge/internal/sample"
	"lobforge/internal/wire"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the order book server")
	owner := flag.String("owner", "", "owner username (compulsory)")
	action := flag.String("action", "place", "action to perform: ['place', 'cancel', 'modify', 'log']")

	sideStr := flag.String("side", "buy", "order side: 'buy' or 'sell'")
	price := flag.Int64("price", 100, "limit price, in integer ticks")
	qtyStr := flag.String("qty", "10", "quantity or comma-separated list (e.g. 10,20,50)")

	orderID := flag.String("uuid", "", "uuid of the order to cancel or modify")

	flag.Parse()

	if *owner == "" {
		fmt.Println("Error: -owner is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s as '%s'\n", *serverAddr, *owner)

	go readReports(conn)

	side := sample.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = sample.Sell
	}

	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range parseQuantities(*qtyStr) {
			if err := sendNewOrder(conn, side, *price, qty, *owner); err != nil {
				log.Printf("failed to place order (qty %d): %v", qty, err)
			} else {
				fmt.Printf("-> sent %s order: %d @ %d\n", strings.ToUpper(*sideStr), qty, *price)
			}
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if *orderID == "" {
			log.Fatal("Error: -uuid is required for cancellation")
		}
		if err := sendCancelOrder(conn, *orderID); err != nil {
			log.Printf("failed to send cancel request: %v", err)
		} else {
			fmt.Printf("-> sent cancel request for %s\n", *orderID)
		}

	case "modify":
		if *orderID == "" {
			log.Fatal("Error: -uuid is required for modification")
		}
		qty, err := strconv.ParseUint(*qtyStr, 10, 64)
		if err != nil {
			log.Fatalf("invalid -qty: %v", err)
		}
		if err := sendModifyOrder(conn, *orderID, side, *price, qty); err != nil {
			log.Printf("failed to send modify request: %v", err)
		} else {
			fmt.Printf("-> sent modify request for %s\n", *orderID)
		}

	case "log":
		if err := sendLog(conn); err != nil {
			log.Printf("failed to send log request: %v", err)
		} else {
			fmt.Println("-> sent log request")
		}

	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("\nlistening for reports... (press Ctrl+C to exit)")
	select {}
}

func parseQuantities(input string) []uint64 {
	var result []uint64
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseUint(p, 10, 64); err == nil {
			result = append(result, val)
		} else {
			log.Printf("warning: invalid quantity '%s', skipping", p)
		}
	}
	return result
}

func sendNewOrder(conn net.Conn, side sample.Side, price int64, qty uint64, owner string) error {
	usernameLen := len(owner)
	totalLen := wire.BaseMessageHeaderLen + wire.NewOrderMessageHeaderLen + usernameLen
	buf := make([]byte, totalLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(wire.NewOrder))
	buf[2] = byte(side)
	binary.BigEndian.PutUint64(buf[3:11], uint64(price))
	binary.BigEndian.PutUint64(buf[11:19], qty)
	buf[19] = uint8(usernameLen)
	copy(buf[20:], owner)

	_, err := conn.Write(buf)
	return err
}

func sendCancelOrder(conn net.Conn, orderID string) error {
	buf := make([]byte, wire.BaseMessageHeaderLen+wire.CancelOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(wire.CancelOrder))
	idBytes := make([]byte, 16)
	copy(idBytes, orderID)
	copy(buf[2:18], idBytes)
	_, err := conn.Write(buf)
	return err
}

func sendModifyOrder(conn net.Conn, orderID string, side sample.Side, price int64, qty uint64) error {
	buf := make([]byte, wire.BaseMessageHeaderLen+wire.ModifyOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(wire.ModifyOrder))
	idBytes := make([]byte, 16)
	copy(idBytes, orderID)
	copy(buf[2:18], idBytes)
	buf[18] = byte(side)
	binary.BigEndian.PutUint64(buf[19:27], uint64(price))
	binary.BigEndian.PutUint64(buf[27:35], qty)
	_, err := conn.Write(buf)
	return err
}

func sendLog(conn net.Conn) error {
	buf := make([]byte, wire.BaseMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(wire.LogBook))
	_, err := conn.Write(buf)
	return err
}

func readReports(conn net.Conn) {
	for {
		headerBuf := make([]byte, reportFixedHeaderLen)
		if _, err := io.ReadFull(conn, headerBuf); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}

		kind := wire.ReportMessageType(headerBuf[0])
		makerID := decodeUUID(headerBuf[1:17])
		takerID := decodeUUID(headerBuf[17:33])
		price := int64(binary.BigEndian.Uint64(headerBuf[33:41]))
		qty := binary.BigEndian.Uint64(headerBuf[41:49])
		errLen := binary.BigEndian.Uint32(headerBuf[49:53])

		var errStr string
		if errLen > 0 {
			errBuf := make([]byte, errLen)
			if _, err := io.ReadFull(conn, errBuf); err != nil {
				log.Printf("error reading report body: %v", err)
				return
			}
			errStr = string(errBuf)
		}

		if kind == wire.ErrorReport {
			fmt.Printf("\n[ERROR] %s\n", errStr)
		} else {
			fmt.Printf("\n[EXECUTION] maker=%s taker=%s qty=%d price=%d\n", makerID, takerID, qty, price)
		}
	}
}

// reportFixedHeaderLen mirrors wire.reportFixedHeaderLen: the kind byte,
// two 16-byte ids, an 8-byte price, an 8-byte quantity, and a 4-byte error
// length prefix.
const reportFixedHeaderLen = 1 + 16 + 16 + 8 + 8 + 4

func decodeUUID(buf []byte) string {
	b := make([]byte, 16)
	copy(b, buf)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
