// Package client contains the client-side building blocks that talk to the
// outside world: the remote nutrition API and the local database bootstrap.
//
// # Overview
//
//  1. A transport-agnostic API contract (see the Client interface) with one
//     create/update/delete call per entity type, plus Ping. Diary and weight
//     entries have no update call.
//  2. A gRPC implementation (see GRPCClient) that encodes messages with the
//     JSON codec from package api, applies a per-call timeout and maps gRPC
//     status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase) that opens the SQLite file
//     and applies the embedded goose migrations.
//
// # Error Handling
//
// Remote failures are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrInvalidArgument.
package client
