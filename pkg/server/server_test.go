package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/dr0pdb/squeefdb/pkg/common"
	"github.com/dr0pdb/squeefdb/pkg/logger"
	"github.com/dr0pdb/squeefdb/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe to share with the accept loop goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testServer struct {
	*Server
	rec     *logger.Recorder
	console *syncBuffer
}

func newTestServer(conf *common.ServerConfig) *testServer {
	if conf == nil {
		conf = common.NewDefaultServerConfig()
		conf.Port = 0
	}
	rec := logger.NewRecorder()
	console := &syncBuffer{}
	s := New(conf, logger.Loggers{rec}, WithHandler(NewEchoHandler(conf, console)))
	return &testServer{Server: s, rec: rec, console: console}
}

// runInBackground starts the accept loop and returns the channel receiving its result.
func runInBackground(s *Server) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.Run()
	}()
	return done
}

// sendMessage connects, writes msg, half closes and waits for the server to close the connection.
func sendMessage(t *testing.T, port int, msg []byte) {
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.Nil(t, err, "unexpected error connecting to the server")
	defer conn.Close()

	if len(msg) > 0 {
		_, err = conn.Write(msg)
		require.Nil(t, err)
	}
	conn.(*net.TCPConn).CloseWrite()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	// a rejected message may be answered with a reset instead of a clean close
	_, _ = io.Copy(ioutil.Discard, conn)
}

func waitForRun(t *testing.T, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("accept loop did not return")
		return nil
	}
}

func TestStartStopLogsInOrder(t *testing.T) {
	s := newTestServer(nil)

	require.Nil(t, s.Start())
	assert.Equal(t, Listening, s.State())
	port := s.Port()
	assert.NotEqual(t, 0, port, "an ephemeral port should have been assigned")

	assert.Equal(t, []logger.Entry{
		{Severity: logger.Info, Message: "Starting server..."},
		{Severity: logger.Info, Message: fmt.Sprintf("Server started. Listening on port %d", port)},
	}, s.rec.Entries())

	require.Nil(t, s.Stop())
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, 0, s.Port())

	assert.Equal(t, []logger.Entry{
		{Severity: logger.Info, Message: "Starting server..."},
		{Severity: logger.Info, Message: fmt.Sprintf("Server started. Listening on port %d", port)},
		{Severity: logger.Info, Message: "Stopping server..."},
		{Severity: logger.Info, Message: "Server stopped"},
	}, s.rec.Entries())
	assert.Nil(t, s.rec.Filter(logger.Error))

	// the socket must have been released
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	require.Nil(t, err, "port should be free after Stop")
	l.Close()
}

func TestStartFailsWhenPortInUse(t *testing.T) {
	other, err := net.Listen("tcp4", "0.0.0.0:0")
	require.Nil(t, err)
	defer other.Close()

	conf := common.NewDefaultServerConfig()
	conf.Port = other.Addr().(*net.TCPAddr).Port
	s := newTestServer(conf)

	err = s.Start()
	require.NotNil(t, err)

	var se *StepError
	require.True(t, errors.As(err, &se), "start should return a step error")
	assert.Equal(t, StepBind, se.Step)
	assert.True(t, errors.Is(err, syscall.EADDRINUSE))

	assert.Equal(t, Created, s.State(), "a failed start leaves the server in the created state")
	assert.Equal(t, 0, s.Port())

	errs := s.rec.Filter(logger.Error)
	require.Equal(t, 1, len(errs))
	assert.True(t, strings.HasPrefix(errs[0], "Failed to bind socket. Errno "), "unexpected error line %q", errs[0])

	// Run must refuse to accept anything
	assert.Equal(t, ErrNotListening, s.Run())
	assert.True(t, s.rec.Contains(logger.Error, "not listening"))
	assert.Equal(t, []string{"Starting server..."}, s.rec.Filter(logger.Info))
}

func TestStopIsIdempotent(t *testing.T) {
	s := newTestServer(nil)

	assert.Nil(t, s.Stop(), "stopping a server that never started")
	assert.Nil(t, s.Stop())
	assert.Equal(t, []string{"Stopping server...", "Server stopped", "Stopping server...", "Server stopped"}, s.rec.Filter(logger.Info))

	started := newTestServer(nil)
	require.Nil(t, started.Start())
	assert.Nil(t, started.Stop())
	assert.Nil(t, started.Stop())
	assert.Equal(t, 6, len(started.rec.Filter(logger.Info)))
	assert.Nil(t, started.rec.Filter(logger.Error))
}

func TestStartOnlyFromCreated(t *testing.T) {
	s := newTestServer(nil)
	require.Nil(t, s.Start())
	defer s.Stop()

	assert.Equal(t, ErrInvalidState, s.Start())
	assert.Equal(t, Listening, s.State())

	stopped := newTestServer(nil)
	stopped.Stop()
	assert.Equal(t, ErrInvalidState, stopped.Start(), "a stopped server cannot be restarted")
}

func TestServeSequentialClients(t *testing.T) {
	s := newTestServer(nil)
	require.Nil(t, s.Start())
	done := runInBackground(s.Server)

	sendMessage(t, s.Port(), test.TestMessages[0])
	sendMessage(t, s.Port(), test.TestMessages[1])

	assert.Eventually(t, func() bool {
		return s.console.String() == "hello\nCREATE DATABASE my_db\n"
	}, 5*time.Second, 10*time.Millisecond, "both messages should have been echoed in order")
	assert.Eventually(t, func() bool {
		return len(s.rec.Filter(logger.Info)) == 6
	}, 5*time.Second, 10*time.Millisecond)

	infos := s.rec.Filter(logger.Info)
	assert.True(t, strings.HasPrefix(infos[2], "Accepted connection from 127.0.0.1:"))
	assert.True(t, strings.HasSuffix(infos[3], " closed"))
	assert.True(t, strings.HasPrefix(infos[4], "Accepted connection from 127.0.0.1:"))

	require.Nil(t, s.Stop())
	assert.Equal(t, ErrServerClosed, waitForRun(t, done))
	assert.Nil(t, s.rec.Filter(logger.Error), "a stop-initiated shutdown is not an error")
}

func TestOversizedMessageRejected(t *testing.T) {
	conf := common.NewDefaultServerConfig()
	conf.Port = 0
	conf.MaxMessageSize = 16
	s := newTestServer(conf)
	require.Nil(t, s.Start())
	done := runInBackground(s.Server)

	sendMessage(t, s.Port(), bytes.Repeat([]byte("x"), 64))
	assert.Eventually(t, func() bool {
		return s.rec.Contains(logger.Warning, "message too large")
	}, 5*time.Second, 10*time.Millisecond)

	// exactly one byte below the limit is accepted
	sendMessage(t, s.Port(), bytes.Repeat([]byte("y"), 15))
	assert.Eventually(t, func() bool {
		return s.console.String() == strings.Repeat("y", 15)+"\n"
	}, 5*time.Second, 10*time.Millisecond, "the oversized message must not be echoed")

	require.Nil(t, s.Stop())
	assert.Equal(t, ErrServerClosed, waitForRun(t, done))
}

func TestEmptyConnection(t *testing.T) {
	s := newTestServer(nil)
	require.Nil(t, s.Start())
	done := runInBackground(s.Server)

	sendMessage(t, s.Port(), nil)
	assert.Eventually(t, func() bool {
		return s.rec.Contains(logger.Warning, "closed without data")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "", s.console.String())

	// the loop keeps going
	sendMessage(t, s.Port(), test.TestMessages[3])
	assert.Eventually(t, func() bool {
		return s.console.String() == "DUMP\n"
	}, 5*time.Second, 10*time.Millisecond)

	require.Nil(t, s.Stop())
	assert.Equal(t, ErrServerClosed, waitForRun(t, done))
}

func TestHandlerErrorsDoNotStopTheLoop(t *testing.T) {
	conf := common.NewDefaultServerConfig()
	conf.Port = 0
	rec := logger.NewRecorder()

	var mu sync.Mutex
	served := 0
	h := HandlerFunc(func(conn net.Conn) error {
		defer conn.Close()
		mu.Lock()
		defer mu.Unlock()
		served++
		return fmt.Errorf("handler failure %d", served)
	})

	s := New(conf, rec, WithHandler(h))
	require.Nil(t, s.Start())
	done := runInBackground(s)

	sendMessage(t, s.Port(), []byte("a"))
	sendMessage(t, s.Port(), []byte("b"))

	assert.Eventually(t, func() bool {
		return rec.Contains(logger.Warning, "handler failure 2")
	}, 5*time.Second, 10*time.Millisecond)

	require.Nil(t, s.Stop())
	assert.Equal(t, ErrServerClosed, waitForRun(t, done))
}

type recordingObserver struct {
	mu     sync.Mutex
	states []State
}

func (o *recordingObserver) StateChanged(state State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, state)
}

func TestStateObserver(t *testing.T) {
	conf := common.NewDefaultServerConfig()
	conf.Port = 0
	obs := &recordingObserver{}

	s := New(conf, nil, WithStateObserver(obs))
	require.Nil(t, s.Start())
	require.Nil(t, s.Stop())

	assert.Equal(t, []State{Listening, Stopped}, obs.states)
}

func TestStepErrorMessages(t *testing.T) {
	cause := errors.New("address already in use")
	cases := map[Step]string{
		StepSocket: "Failed to create socket. Errno address already in use",
		StepBind:   "Failed to bind socket. Errno address already in use",
		StepListen: "Failed to start listening. Errno address already in use",
		StepAccept: "Failed to accept incoming connection. Errno address already in use",
		StepRead:   "Failed to read from connection. Errno address already in use",
	}
	for step, line := range cases {
		se := &StepError{Step: step, Err: cause}
		assert.Equal(t, line, se.logLine())
		assert.Equal(t, step.String()+": address already in use", se.Error())
		assert.True(t, errors.Is(se, cause))
	}
}
