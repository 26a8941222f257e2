package main

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	mockRedis "github.com/muhammadchandra19/exchange/pkg/redis/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestConnectRedis(t *testing.T) {
	refused := stderrors.New("dial tcp 127.0.0.1:6379: connection refused")

	testCases := []struct {
		name     string
		mockFn   func(client *mockRedis.MockClient)
		assertFn func(t *testing.T, err error)
	}{
		{
			name: "first attempt succeeds",
			mockFn: func(client *mockRedis.MockClient) {
				client.EXPECT().Connect(gomock.Any()).Return(nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "reconnect succeeds",
			mockFn: func(client *mockRedis.MockClient) {
				gomock.InOrder(
					client.EXPECT().Connect(gomock.Any()).Return(refused),
					client.EXPECT().Reconnect(gomock.Any()).Return(true),
				)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "reconnect gives up",
			mockFn: func(client *mockRedis.MockClient) {
				client.EXPECT().Connect(gomock.Any()).Return(refused)
				client.EXPECT().Reconnect(gomock.Any()).Return(false)
			},
			assertFn: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.ErrorIs(t, err, refused)

				var tracer *errors.ErrorTracer
				require.True(t, stderrors.As(err, &tracer))
				assert.Equal(t, "redis unreachable after reconnect attempts", tracer.Message)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mockRedis.NewMockClient(ctrl)
			tc.mockFn(client)

			tc.assertFn(t, connectRedis(context.Background(), client, logger.NewNop()))
		})
	}
}
