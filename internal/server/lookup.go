package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/async"
	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/extract"
	"github.com/joseph-ayodele/uefiscdi/internal/repository"
	"github.com/joseph-ayodele/uefiscdi/internal/search"
	"github.com/joseph-ayodele/uefiscdi/internal/utils"
)

// LookupServer answers journal queries from the extraction cache. Queries
// never download; Index hands work to a background queue when one is set.
type LookupServer struct {
	store   repository.Store
	queue   async.Queue
	version int
	logger  *slog.Logger
}

func NewLookupServer(store repository.Store, defaultVersion int, logger *slog.Logger) *LookupServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupServer{store: store, version: defaultVersion, logger: logger}
}

// WithQueue enables the Index method.
func (s *LookupServer) WithQueue(q async.Queue) *LookupServer {
	s.queue = q
	return s
}

// NewGRPCServer builds a server with the lookup and health services registered.
func NewGRPCServer(lookup *LookupServer, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	RegisterJournalLookupServer(s, lookup)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return s
}

// Search implements uefiscdi.v1.JournalLookup/Search.
//
// Request fields: database (required), version, category, quartile, query.
// Response fields: database, version, url, total, entries; each entry also
// carries its position in the database as "ordinal".
func (s *LookupServer) Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	database, version, err := s.target(req)
	if err != nil {
		return nil, err
	}
	quartile, err := utils.IntField(req, "quartile", 0)
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	v := common.NewValidator()
	v.Field("quartile", quartile, common.Between(0, 4))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	db, err := s.load(ctx, database, version)
	if err != nil {
		return nil, err
	}

	hits, err := search.Search(db.Entries, search.Filter{
		Category:    utils.StringField(req, "category"),
		MaxQuartile: quartile,
		Query:       utils.StringField(req, "query"),
	})
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}

	entries := make([]any, 0, len(hits))
	for _, h := range hits {
		m := utils.EntryMap(h.Entry)
		m["ordinal"] = h.Position
		entries = append(entries, m)
	}
	out, err := structpb.NewStruct(map[string]any{
		"database": db.ID,
		"version":  db.Version,
		"url":      db.URL,
		"total":    len(db.Entries),
		"entries":  entries,
	})
	if err != nil {
		s.logger.Error("lookup.search.encode_failed", "database", database, "version", version, "error", err)
		return nil, common.InternalError("encode response failed")
	}

	s.logger.Info("lookup.search.ok", "database", database, "version", version, "hits", len(hits))
	return out, nil
}

// Resolve implements uefiscdi.v1.JournalLookup/Resolve: the entry for one
// journal given by name or ISSN. Request fields: database, version, name,
// policy ("first" or "unique").
func (s *LookupServer) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	database, version, err := s.target(req)
	if err != nil {
		return nil, err
	}
	name := utils.StringField(req, "name")
	v := common.NewValidator()
	v.Field("name", name, common.Required)
	v.Field("policy", utils.StringField(req, "policy"), common.OneOf("", "first", "unique"))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	policy, _ := search.ParsePolicy(utils.StringField(req, "policy"))

	db, err := s.load(ctx, database, version)
	if err != nil {
		return nil, err
	}

	e, err := search.Resolve(db.Entries, name, policy)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return nil, common.NotFoundErrorf("journal %q not in %s %d", name, database, version)
	case err != nil:
		return nil, common.InvalidArgumentError(err.Error())
	}

	out, err := utils.ToPBEntry(e)
	if err != nil {
		return nil, common.InternalError("encode response failed")
	}
	return out, nil
}

// Index implements uefiscdi.v1.JournalLookup/Index: schedule a background
// (re)index of one release. Request fields: database, version, overwrite.
// The response carries the trace id used in the worker logs.
func (s *LookupServer) Index(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.queue == nil {
		return nil, status.Error(codes.FailedPrecondition, "indexing is disabled on this server")
	}
	database, version, err := s.target(req)
	if err != nil {
		return nil, err
	}
	kind := constants.Database(database)
	if _, err := extract.Lookup(kind, version); err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}

	job := async.Job{
		Kind:      kind,
		Year:      version,
		Overwrite: req.GetFields()["overwrite"].GetBoolValue(),
		TraceID:   uuid.NewString(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if errors.Is(err, async.ErrClosed) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return nil, status.FromContextError(err).Err()
	}

	out, err := structpb.NewStruct(map[string]any{
		"database": database,
		"version":  version,
		"trace_id": job.TraceID,
		"queued":   true,
	})
	if err != nil {
		return nil, common.InternalError("encode response failed")
	}
	return out, nil
}

func (s *LookupServer) target(req *structpb.Struct) (string, int, error) {
	database := utils.StringField(req, "database")
	version, err := utils.IntField(req, "version", s.version)
	if err != nil {
		return "", 0, common.InvalidArgumentError(err.Error())
	}

	v := common.NewValidator()
	v.Field("database", database, common.Required, common.OneOf(constants.AsStringSlice()...))
	v.Field("version", version, common.Between(2000, 2100))
	if err := common.ValidateAndReturnError(v); err != nil {
		return "", 0, err
	}
	return database, version, nil
}

func (s *LookupServer) load(ctx context.Context, database string, version int) (*entity.Database, error) {
	db, err := s.store.Load(ctx, database, version)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NotFoundErrorf("%s %d is not indexed", database, version)
	}
	if err != nil {
		s.logger.Error("lookup.load.failed", "database", database, "version", version, "error", err)
		return nil, common.InternalError("load database failed")
	}
	return db, nil
}
