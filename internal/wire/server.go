package wire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"lobforge/internal/engine"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers     = 10
	defaultConnTimeout  = time.Second
)

var ErrImproperConversion = errors.New("wire: improper task type conversion")

// clientSession is one connected TCP session, keyed by remote address —
// the teacher's internal/net/server.go ClientSession carried straight
// through.
type clientSession struct {
	conn net.Conn
}

type clientMessage struct {
	clientAddress string
	message       Message
}

// Server is the TCP front end for a single OrderBook. It owns no matching
// logic of its own: every request becomes one engine.Op, Process'd
// immediately against the book, and every resulting Match becomes an
// ExecutionReport back to the requester.
type Server struct {
	address            string
	port               int
	book               *engine.OrderBook[string, int64, uint64]
	pool               WorkerPool
	cancel             context.CancelFunc
	clientSessions     map[string]clientSession
	clientSessionsLock sync.Mutex
	clientMessages     chan clientMessage
}

func New(address string, port int, book *engine.OrderBook[string, int64, uint64]) *Server {
	return &Server{
		address:        address,
		port:           port,
		book:           book,
		pool:           NewWorkerPool(defaultNWorkers),
		clientSessions: make(map[string]clientSession),
		clientMessages: make(chan clientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run accepts connections until ctx is cancelled. Adapted from the
// teacher's internal/net/server.go Run, with the matching engine swapped
// for engine.OrderBook and the worker pool for this package's own
// self-contained WorkerPool.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()
	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error { return s.sessionHandler(t) })

	log.Info().Str("address", listener.Addr().String()).Msg("order book server running")
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("new client connected")
			s.addClientSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case msg := <-s.clientMessages:
			if err := s.handleMessage(msg); err != nil {
				log.Error().Err(err).Str("clientAddress", msg.clientAddress).Msg("error handling message")
				s.reportError(msg.clientAddress, err)
			}
		}
	}
}

func (s *Server) handleMessage(msg clientMessage) error {
	var op engine.Op[string, int64, uint64]
	switch m := msg.message.(type) {
	case NewOrderMessage:
		op = m.Op()
	case CancelOrderMessage:
		op = m.Op()
	case ModifyOrderMessage:
		op = m.Op()
	case BaseMessage:
		if m.GetType() == LogBook {
			s.logBook()
			return nil
		}
		return ErrInvalidMessageType
	default:
		return ErrInvalidMessageType
	}

	matches, err := s.book.Process([]engine.Op[string, int64, uint64]{op})
	if err != nil {
		return err
	}
	for _, m := range matches {
		s.reportMatch(msg.clientAddress, m)
	}
	return nil
}

func (s *Server) logBook() {
	bestBid, hasBid := s.book.BestBid()
	bestAsk, hasAsk := s.book.BestAsk()
	log.Info().
		Bool("hasBid", hasBid).Int64("bestBid", bestBid).
		Bool("hasAsk", hasAsk).Int64("bestAsk", bestAsk).
		Msg("book snapshot")
}

func (s *Server) reportMatch(clientAddress string, m engine.Match[string, int64, uint64]) {
	s.write(clientAddress, matchReport(m).Serialize())
}

func (s *Server) reportError(clientAddress string, err error) {
	s.write(clientAddress, errorReport(err).Serialize())
}

func (s *Server) write(clientAddress string, payload []byte) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	session, ok := s.clientSessions[clientAddress]
	if !ok {
		return
	}
	if _, err := session.conn.Write(payload); err != nil {
		log.Error().Err(err).Str("clientAddress", clientAddress).Msg("unable to write report")
		delete(s.clientSessions, clientAddress)
	}
}

// handleConnection reads the next message off conn, decodes it, and hands
// it to sessionHandler. Any error returned from here is fatal to the
// worker, matching the teacher's internal/net/server.go contract.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}
	// The connection stays open once it is re-queued for its next message;
	// every other exit path closes it.
	requeued := false
	defer func() {
		if requeued {
			return
		}
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String())
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Msg("failed setting connection deadline")
		return nil
	}

	buffer := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
		n, err := conn.Read(buffer)
		if err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error reading from connection")
			s.deleteClientSession(conn.RemoteAddr().String())
			return nil
		}

		message, err := ParseMessage(buffer[:n])
		if err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
			s.deleteClientSession(conn.RemoteAddr().String())
			return nil
		}

		s.clientMessages <- clientMessage{clientAddress: conn.RemoteAddr().String(), message: message}
		requeued = true
		s.pool.AddTask(conn)
	}
	return nil
}

func (s *Server) addClientSession(conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	s.clientSessions[conn.RemoteAddr().String()] = clientSession{conn: conn}
}

func (s *Server) deleteClientSession(address string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	delete(s.clientSessions, address)
}
