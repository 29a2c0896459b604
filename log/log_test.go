package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogContext(t *testing.T) {
	ctx := WithLogField(context.Background(), "tag", "DidUpdate")
	assert.Equal(t, "DidUpdate", L(ctx).Data["tag"])
	assert.Equal(t, rootLogger, L(context.Background()))
}

func TestLogFieldTruncated(t *testing.T) {
	ctx := WithLogField(context.Background(), "payload", strings.Repeat("a", 100))
	assert.Equal(t, strings.Repeat("a", 61)+"...", L(ctx).Data["payload"])
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.True(t, IsDebugEnabled())
	SetLevel("warn")
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	SetLevel("nonsense")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestJSONFormat(t *testing.T) {
	orig := logrus.StandardLogger().Out
	buf := new(bytes.Buffer)
	SetOutput(buf)
	SetFormat("json")
	defer func() {
		SetFormat("text")
		SetOutput(orig)
	}()

	ctx := WithLogField(context.Background(), "txID", "abc")
	L(ctx).Info("submitted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "submitted", line["msg"])
	assert.Equal(t, "abc", line["txID"])
}
