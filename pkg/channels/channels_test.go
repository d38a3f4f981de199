package channels

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/racetrack/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectPair(t *testing.T, dir string, slot int) (server Conn, participant Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	type result struct {
		conn Conn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		c, err := Accept(ctx, dir, slot)
		accepted <- result{c, err}
	}()

	participant, err := Dial(ctx, dir, slot)
	require.NoError(t, err)
	r := <-accepted
	require.NoError(t, r.err)
	return r.conn, participant
}

func TestConnRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CreateEndpoints(dir, 3))
	defer RemoveEndpoints(dir, 3)

	server, participant := connectPair(t, dir, 1)
	defer server.Close()
	defer participant.Close()

	require.NoError(t, server.Send(messages.MessageTypeYourTurn))
	line, err := participant.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "YOUR_TURN\n", line)

	require.NoError(t, participant.Send(messages.Line(messages.MessageTypeRoll)))
	line, err = server.ReadLine()
	require.NoError(t, err)
	assert.True(t, messages.IsType(line, messages.MessageTypeRoll))
}

func TestReadLineReportsClosedChannel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CreateEndpoints(dir, 1))

	server, participant := connectPair(t, dir, 0)
	defer server.Close()

	require.NoError(t, participant.Close())

	_, err := server.ReadLine()
	require.Error(t, err)
	assert.True(t, IsChannelClosed(err))
}

func TestReadLineReturnsTrailingPartialLine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CreateEndpoints(dir, 1))

	server, participant := connectPair(t, dir, 0)
	defer server.Close()

	p := participant.(*pipeConn)
	_, err := p.out.WriteString("anything")
	require.NoError(t, err)
	require.NoError(t, participant.Close())

	line, err := server.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "anything", line)

	_, err = server.ReadLine()
	assert.True(t, IsChannelClosed(err))
}

func TestAcceptHonoursContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CreateEndpoints(dir, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Accept(ctx, dir, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAcceptMissingEndpoint(t *testing.T) {
	_, err := Accept(context.Background(), t.TempDir(), 0)
	assert.Error(t, err)
}

func TestBroadcast(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CreateEndpoints(dir, 3))

	server, participant := connectPair(t, dir, 2)
	defer server.Close()
	defer participant.Close()

	b := NewPipeBroadcaster(dir)
	// slot 0 has no reader and is skipped with an error
	errs := b.Broadcast([]int{0, 2}, messages.MessageTypeGameOver)
	assert.Len(t, errs, 1)

	line, err := participant.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "GAME_OVER\n", line)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/tmp/player_3_in", InPath("/tmp", 3))
	assert.Equal(t, "/tmp/player_3_out", OutPath("/tmp", 3))
}
