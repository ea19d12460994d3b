package errors

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad args").Build(), 2},
		{"config", ConfigError("bad config").Build(), 7},
		{"missing template", NotFoundError("template missing").Build(), 11},
		{"wrapped build", fmt.Errorf("pass: %w", BuildError("failed").Build()), 11},
		{"internal", InternalError("bug").Build(), 10},
		{"plugin", PluginError("boom").Build(), 1},
		{"unclassified", fmt.Errorf("unknown"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	adapter.out = &out

	err := NotFoundError("master template missing").
		WithContext("path", "tpl/filled_master_template.html").
		WithCause(fmt.Errorf("no such file")).
		Build()

	code := adapter.Report(err)

	assert.Equal(t, 11, code)
	assert.Equal(t, "Error: master template missing (tpl/filled_master_template.html): no such file\n", out.String())
}

func TestCLIErrorAdapter_VerboseFormat(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, nil)
	err := ConfigError("bad").Build()

	assert.Equal(t, "Error: [config:fatal] bad", adapter.FormatError(err))
}
