package notify

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestFeed_KeepsOrderBeforeWrap(t *testing.T) {
	feed := NewFeed(3)
	feed.Success("a")
	feed.Error("b")

	got := feed.Recent()
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Message)
	require.Equal(t, LevelSuccess, got[0].Level)
	require.Equal(t, "b", got[1].Message)
	require.Equal(t, LevelError, got[1].Level)
}

func TestFeed_DropsOldestAfterWrap(t *testing.T) {
	feed := NewFeed(3)
	for _, msg := range []string{"1", "2", "3", "4", "5"} {
		feed.Success(msg)
	}

	got := feed.Recent()
	require.Len(t, got, 3)
	require.Equal(t, "3", got[0].Message)
	require.Equal(t, "4", got[1].Message)
	require.Equal(t, "5", got[2].Message)
}

func TestFeed_DefaultSize(t *testing.T) {
	feed := NewFeed(0)
	require.Len(t, feed.items, DefaultFeedSize)
	require.Empty(t, feed.Recent())
}

func TestMulti_FansOut(t *testing.T) {
	first := &Recorder{}
	second := &Recorder{}
	multi := Multi{first, nil, second}

	multi.Success("ok")
	multi.Error("fail")

	for _, rec := range []*Recorder{first, second} {
		got := rec.All()
		require.Len(t, got, 2)
		require.Equal(t, Notification{Level: LevelSuccess, Message: "ok"}, got[0])
		require.Equal(t, Notification{Level: LevelError, Message: "fail"}, got[1])
	}
}

func TestRecorder_Reset(t *testing.T) {
	rec := &Recorder{}
	rec.Error("x")
	rec.Reset()
	require.Empty(t, rec.All())
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	n := NewLogNotifier(logger.WithField("component", "test"))
	n.Success("Product added to cart")
	n.Error("Product out of stock")

	out := buf.String()
	require.Contains(t, out, "Product added to cart")
	require.Contains(t, out, "level=info")
	require.Contains(t, out, "notification=success")
	require.Contains(t, out, "Product out of stock")
	require.Contains(t, out, "level=warning")
}
