package logging

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name    string
		logger  Logger
		wantOut string
		wantErr string
	}{
		{
			name:    "quiet",
			logger:  Logger{},
			wantOut: "",
			wantErr: "[warn] w\n[error] e\n",
		},
		{
			name:    "verbose",
			logger:  Logger{Verbose: true},
			wantOut: "[info] i\n",
			wantErr: "[warn] w\n[error] e\n",
		},
		{
			name:    "debug implies info",
			logger:  Logger{Debug: true},
			wantOut: "[info] i\n[debug] d\n",
			wantErr: "[warn] w\n[error] e\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			l := tt.logger
			l.Out = &out
			l.Err = &errOut

			l.Infof("i")
			l.Debugf("d")
			l.Warnf("w")
			l.Errorf("e")

			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantErr, errOut.String())
		})
	}
}
