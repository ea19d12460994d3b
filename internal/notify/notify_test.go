package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject  string
	data     []byte
	flushErr error
	closed   bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject, f.data = subj, data
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestPublishEncodesEvent(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{conn: fc, subject: "sitegen.pass"}

	ev := Event{
		BuildID: "b-1", Outcome: "success", StartedAt: time.Unix(1700000000, 0).UTC(), DurationMS: 42,
		Namespaces: []NamespaceSum{{Name: "pages", Dir: "site", Written: 3, Pruned: 1}},
	}
	require.NoError(t, p.Publish(context.Background(), ev))
	assert.Equal(t, "sitegen.pass", fc.subject)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(fc.data, &decoded))
	assert.Equal(t, "b-1", decoded["build_id"])
	assert.Equal(t, "success", decoded["outcome"])
	ns := decoded["namespaces"].([]any)[0].(map[string]any)
	assert.Equal(t, "pages", ns["name"])
	assert.InDelta(t, 3, ns["written"], 0)

	p.Close()
	assert.True(t, fc.closed)
}

func TestPublishFlushError(t *testing.T) {
	p := &NATSPublisher{conn: &fakeConn{flushErr: errors.New("timeout")}, subject: "s"}
	err := p.Publish(context.Background(), Event{BuildID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush")
}

func TestNewNATSPublisherErrors(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "")
	require.Error(t, err)

	_, err = NewNATSPublisher("nats://127.0.0.1:1", "sitegen.pass")
	require.Error(t, err)
}
