package notify

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Notify(Notification{Level: LevelSuccess, Message: "Added to cart", Duration: DefaultDuration})
	c.Notify(Notification{Level: LevelError, Message: "Could not add", Duration: DefaultDuration})

	assert.Equal(t, "✓ Added to cart\n✗ Could not add\n", buf.String())
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	NewLogNotifier(logger).Notify(Notification{Level: LevelError, Message: "boom", Duration: DefaultDuration})

	assert.Contains(t, buf.String(), `"msg":"boom"`)
	assert.Contains(t, buf.String(), `"level":"warning"`)
	assert.Contains(t, buf.String(), `"duration":"3s"`)
}

func TestMulti(t *testing.T) {
	var a, b bytes.Buffer
	Multi{NewConsole(&a), NewConsole(&b)}.Notify(Notification{Level: LevelInfo, Message: "hi"})

	assert.Equal(t, "i hi\n", a.String())
	assert.Equal(t, a.String(), b.String())
}
