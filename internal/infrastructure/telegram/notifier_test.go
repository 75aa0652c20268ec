package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotifyMisconfigured(t *testing.T) {
	t.Parallel()

	require.Error(t, NewNotifier("", "chat").Notify(context.Background(), "hi"))
	require.Error(t, NewNotifier("token", "").Notify(context.Background(), "hi"))
}
