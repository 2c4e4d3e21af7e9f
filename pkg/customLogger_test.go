package dqm

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewSlogLogger(&out, &errOut)

	l.Info("Reading file", "fileReader")
	assert.Regexp(t, `^\[\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\] \[fileReader\] Reading file\n$`, out.String())
	assert.Empty(t, errOut.String())

	l.Error("invalid DCC range")
	var record map[string]any
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "invalid DCC range", record["msg"])
}
