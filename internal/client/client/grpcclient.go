package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/api"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const defaultTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	dialOpts    []grpc.DialOption
	conn        *grpc.ClientConn
	health      healthpb.HealthClient
}

type Option func(*GRPCClient)

// WithTimeout bounds every remote call.
func WithTimeout(d time.Duration) Option {
	return func(c *GRPCClient) { c.timeout = d }
}

// WithDialOptions appends dial options, e.g. a custom dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

func NewNutritionClientService(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: defaultTimeout}
	for _, o := range opts {
		o(c)
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// Ping asks the server's health service whether the nutrition API is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The health service speaks protobuf, not the JSON subtype.
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: api.ServiceName},
		grpc.CallContentSubtype("proto"))
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}

	return nil
}

func invoke[Req, Resp any](ctx context.Context, s *GRPCClient, entity models.EntityType, op models.Operation, req Req) (*Resp, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp := new(Resp)
	if err := s.conn.Invoke(ctx, api.FullMethod(entity, op), req, resp); err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func create[Req, Rec any](ctx context.Context, s *GRPCClient, entity models.EntityType, req Req) (*Rec, error) {
	return invoke[Req, Rec](ctx, s, entity, models.OperationCreate, req)
}

func update[Req, Rec any](ctx context.Context, s *GRPCClient, entity models.EntityType, id string, req Req) (*Rec, error) {
	return invoke[api.UpdateRequest[Req], Rec](ctx, s, entity, models.OperationUpdate, api.UpdateRequest[Req]{ID: id, Body: req})
}

func remove(ctx context.Context, s *GRPCClient, entity models.EntityType, id string) error {
	_, err := invoke[api.DeleteRequest, api.Empty](ctx, s, entity, models.OperationDelete, api.DeleteRequest{ID: id})
	return err
}

func (s *GRPCClient) CreateFood(ctx context.Context, req models.FoodRequest) (*models.Food, error) {
	return create[models.FoodRequest, models.Food](ctx, s, models.EntityFood, req)
}

func (s *GRPCClient) UpdateFood(ctx context.Context, id string, req models.FoodRequest) (*models.Food, error) {
	return update[models.FoodRequest, models.Food](ctx, s, models.EntityFood, id, req)
}

func (s *GRPCClient) DeleteFood(ctx context.Context, id string) error {
	return remove(ctx, s, models.EntityFood, id)
}

func (s *GRPCClient) CreateDiaryEntry(ctx context.Context, req models.DiaryEntryRequest) (*models.DiaryEntry, error) {
	return create[models.DiaryEntryRequest, models.DiaryEntry](ctx, s, models.EntityDiaryEntry, req)
}

func (s *GRPCClient) DeleteDiaryEntry(ctx context.Context, id string) error {
	return remove(ctx, s, models.EntityDiaryEntry, id)
}

func (s *GRPCClient) CreateRecipe(ctx context.Context, req models.RecipeRequest) (*models.Recipe, error) {
	return create[models.RecipeRequest, models.Recipe](ctx, s, models.EntityRecipe, req)
}

func (s *GRPCClient) UpdateRecipe(ctx context.Context, id string, req models.RecipeRequest) (*models.Recipe, error) {
	return update[models.RecipeRequest, models.Recipe](ctx, s, models.EntityRecipe, id, req)
}

func (s *GRPCClient) DeleteRecipe(ctx context.Context, id string) error {
	return remove(ctx, s, models.EntityRecipe, id)
}

func (s *GRPCClient) CreateSavedMeal(ctx context.Context, req models.SavedMealRequest) (*models.SavedMeal, error) {
	return create[models.SavedMealRequest, models.SavedMeal](ctx, s, models.EntitySavedMeal, req)
}

func (s *GRPCClient) UpdateSavedMeal(ctx context.Context, id string, req models.SavedMealRequest) (*models.SavedMeal, error) {
	return update[models.SavedMealRequest, models.SavedMeal](ctx, s, models.EntitySavedMeal, id, req)
}

func (s *GRPCClient) DeleteSavedMeal(ctx context.Context, id string) error {
	return remove(ctx, s, models.EntitySavedMeal, id)
}

func (s *GRPCClient) CreateWeightEntry(ctx context.Context, req models.WeightEntryRequest) (*models.WeightEntry, error) {
	return create[models.WeightEntryRequest, models.WeightEntry](ctx, s, models.EntityWeightEntry, req)
}

func (s *GRPCClient) DeleteWeightEntry(ctx context.Context, id string) error {
	return remove(ctx, s, models.EntityWeightEntry, id)
}

func (s *GRPCClient) CreateExerciseEntry(ctx context.Context, req models.ExerciseEntryRequest) (*models.ExerciseEntry, error) {
	return create[models.ExerciseEntryRequest, models.ExerciseEntry](ctx, s, models.EntityExerciseEntry, req)
}

func (s *GRPCClient) UpdateExerciseEntry(ctx context.Context, id string, req models.ExerciseEntryRequest) (*models.ExerciseEntry, error) {
	return update[models.ExerciseEntryRequest, models.ExerciseEntry](ctx, s, models.EntityExerciseEntry, id, req)
}

func (s *GRPCClient) DeleteExerciseEntry(ctx context.Context, id string) error {
	return remove(ctx, s, models.EntityExerciseEntry, id)
}
