package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/artci/feedback-api/internal/analytics"
	handler "github.com/artci/feedback-api/internal/grpc"
	"github.com/artci/feedback-api/internal/grpc/mocks"
	"github.com/artci/feedback-api/internal/repository/models"
	"github.com/artci/feedback-api/internal/service"
	grpcsrv "github.com/artci/feedback-api/pkg/grpc/server"
)

func startServer(t *testing.T, a handler.AnalyticsService, f handler.FeedbackService) *handler.Client {
	t.Helper()
	logger := zaptest.NewLogger(t)
	lis := bufconn.Listen(1 << 20)

	srv, err := grpcsrv.New(
		grpcsrv.WithListener(lis),
		grpcsrv.WithLogger(logger),
	)
	require.NoError(t, err)
	srv.Register(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterFeedbackAnalyticsServer(s, handler.NewGRPCHandlers(a, f, logger))
	})
	srv.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return handler.NewClient(conn)
}

func TestFeedbackAnalyticsOverTheWire(t *testing.T) {
	records := []models.FeedbackRecord{
		{ID: 1, Type: "mobile", Provider: "Orange", Ratings: []byte(`[{"c1":{"label":"Speed","rating":"3"}}]`)},
		{ID: 2, Type: "fixe", Provider: "MTN", Ratings: []byte(`[{"c1":{"label":"Speed","rating":"1"}}]`)},
	}
	a := &mocks.MockAnalyticsService{
		SummaryFunc: func(ctx context.Context, f analytics.Filter) (analytics.Summary, error) {
			return analytics.BuildSummary(records, f), nil
		},
	}
	f := &mocks.MockFeedbackService{
		GetFunc: func(ctx context.Context, id int64) (models.FeedbackRecord, error) {
			return models.FeedbackRecord{}, service.ErrFeedbackNotFound
		},
	}
	client := startServer(t, a, f)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("summary", func(t *testing.T) {
		resp, err := client.Summary(ctx, nil)
		require.NoError(t, err)

		fields := resp.GetStructValue().GetFields()
		assert.Equal(t, 2.0, fields["total_feedback"].GetNumberValue())
		byType := fields["by_type"].GetStructValue().GetFields()
		assert.Equal(t, 1.0, byType["mobile"].GetNumberValue())
		assert.Equal(t, 1.0, byType["fixe"].GetNumberValue())
	})

	t.Run("summary filtered", func(t *testing.T) {
		req, err := structpb.NewStruct(map[string]any{"provider": "MTN"})
		require.NoError(t, err)

		resp, err := client.Summary(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 1.0, resp.GetStructValue().GetFields()["total_feedback"].GetNumberValue())
	})

	t.Run("not found status crosses the wire", func(t *testing.T) {
		req, err := structpb.NewStruct(map[string]any{"id": 99})
		require.NoError(t, err)

		_, err = client.GetFeedback(ctx, req)
		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.NotFound, st.Code())
		assert.Equal(t, "Feedback not found", st.Message())
	})

	t.Run("unimplemented mock surfaces as Internal", func(t *testing.T) {
		_, err := client.Heatmap(ctx, nil)
		assert.Equal(t, codes.Internal, status.Code(err))
	})
}
