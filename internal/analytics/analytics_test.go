package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestNATSServer(t *testing.T) *natsserver.Server {
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

func TestNATSSink_Publishes(t *testing.T) {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("analytics.projects.>")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	sink := NewNATSSink(nc, "", nil)
	sink.Log(context.Background(), NewEvent(EventSwitchProject, "p1", "https://example.com", "provider"))
	require.NoError(t, nc.Flush())

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "analytics.projects.switch_project", msg.Subject)

	var got Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, EventSwitchProject, got.Name)
	assert.Equal(t, "p1", got.ProjectID)
	assert.Equal(t, HashServer("https://example.com"), got.ServerHash)
	assert.NotContains(t, string(msg.Data), "example.com")
}

func TestNATSSink_ClosedConnectionDoesNotPanic(t *testing.T) {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	nc.Close()

	sink := NewNATSSink(nc, "custom", nil)
	assert.Equal(t, "custom.delete_project", sink.Subject(EventDeleteProject))
	assert.NotPanics(t, func() {
		sink.Log(context.Background(), NewEvent(EventDeleteProject, "p1", "", ""))
	})
}

func TestPrometheusSink_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)

	sink.Log(context.Background(), NewEvent(EventDeleteProject, "p1", "", ""))
	sink.Log(context.Background(), NewEvent(EventDeleteProject, "p2", "", ""))
	sink.Log(context.Background(), NewEvent(EventFromURICreateProject, "p3", "", ""))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.events.WithLabelValues(string(EventDeleteProject))))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.events.WithLabelValues(string(EventFromURICreateProject))))
}

func TestMulti_FansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi{a, nil, b, Nop{}}

	m.Log(context.Background(), NewEvent(EventProviderCreateProject, "p1", "", ""))

	assert.Equal(t, []EventName{EventProviderCreateProject}, a.Names())
	assert.Equal(t, []EventName{EventProviderCreateProject}, b.Names())
}

func TestHashServer_Stable(t *testing.T) {
	assert.Equal(t, HashServer("https://a.org"), HashServer("https://a.org"))
	assert.NotEqual(t, HashServer("https://a.org"), HashServer("https://b.org"))
	assert.Len(t, HashServer("https://a.org"), 16)
}
