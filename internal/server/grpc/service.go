package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/api"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dmitrijs2005/nutrisync/internal/server/store"
	"github.com/google/uuid"
	"google.golang.org/grpc"
)

// NutritionServiceServer is the handler type of the service descriptor.
type NutritionServiceServer interface {
	Faults() *Faults
}

// unary adapts a typed handler to grpc.MethodHandler.
func unary[Req any](fullMethod string, h func(ctx context.Context, req *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return h(ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, req, info, func(ctx context.Context, r any) (any, error) {
			return h(ctx, r.(*Req))
		})
	}
}

// builder turns a validated request into the stored record. prev is nil on
// create.
type builder[Req, Rec any] func(id string, req Req, prev *Rec, now time.Time) Rec

func entityMethods[Req, Rec any](s *GRPCServer, entity models.EntityType, col *store.Collection[Rec], build builder[Req, Rec]) []grpc.MethodDesc {
	methods := []grpc.MethodDesc{
		{
			MethodName: api.MethodName(entity, models.OperationCreate),
			Handler: unary(api.FullMethod(entity, models.OperationCreate), func(ctx context.Context, req *Req) (any, error) {
				if err := s.validate.StructCtx(ctx, req); err != nil {
					return nil, invalidArgument(err)
				}
				id := uuid.NewString()
				rec := build(id, *req, nil, time.Now().UTC())
				col.Put(id, rec)
				return &rec, nil
			}),
		},
		{
			MethodName: api.MethodName(entity, models.OperationDelete),
			Handler: unary(api.FullMethod(entity, models.OperationDelete), func(ctx context.Context, req *api.DeleteRequest) (any, error) {
				if err := col.Delete(req.ID); err != nil {
					return nil, mapError(err)
				}
				return &api.Empty{}, nil
			}),
		},
	}

	if !api.SupportsUpdate(entity) {
		return methods
	}

	return append(methods, grpc.MethodDesc{
		MethodName: api.MethodName(entity, models.OperationUpdate),
		Handler: unary(api.FullMethod(entity, models.OperationUpdate), func(ctx context.Context, req *api.UpdateRequest[Req]) (any, error) {
			prev, err := col.Get(req.ID)
			if err != nil {
				return nil, mapError(err)
			}
			if err := s.validate.StructCtx(ctx, &req.Body); err != nil {
				return nil, invalidArgument(err)
			}
			rec := build(req.ID, req.Body, &prev, time.Now().UTC())
			col.Put(req.ID, rec)
			return &rec, nil
		}),
	})
}

func (s *GRPCServer) serviceDesc() *grpc.ServiceDesc {
	var methods []grpc.MethodDesc
	methods = append(methods, entityMethods(s, models.EntityFood, s.data.Foods, buildFood)...)
	methods = append(methods, entityMethods(s, models.EntityDiaryEntry, s.data.DiaryEntries, buildDiaryEntry)...)
	methods = append(methods, entityMethods(s, models.EntityRecipe, s.data.Recipes, buildRecipe)...)
	methods = append(methods, entityMethods(s, models.EntitySavedMeal, s.data.SavedMeals, buildSavedMeal)...)
	methods = append(methods, entityMethods(s, models.EntityWeightEntry, s.data.WeightEntries, buildWeightEntry)...)
	methods = append(methods, entityMethods(s, models.EntityExerciseEntry, s.data.ExerciseEntries, buildExerciseEntry)...)

	return &grpc.ServiceDesc{
		ServiceName: api.ServiceName,
		HandlerType: (*NutritionServiceServer)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "nutrisync/v1/nutrition.json",
	}
}
