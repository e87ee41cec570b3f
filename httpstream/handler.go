package httpstream

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/kbukum/streamgen/adapter"
	"github.com/kbukum/streamgen/digest"
	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/generator"
	"github.com/kbukum/streamgen/logger"
	"github.com/kbukum/streamgen/observability"
	"github.com/kbukum/streamgen/producer"
	"github.com/kbukum/streamgen/stream"
	"github.com/kbukum/streamgen/validation"
	"github.com/kbukum/streamgen/version"
)

// DigestTrailer carries the hex digest of the body when ?digest= is set.
const DigestTrailer = "X-Digest"

// Handler serves generator byte streams over HTTP. Each request builds its
// own adapter, and the response writer is the push side.
type Handler struct {
	cfg         Config
	service     string
	streamOpts  stream.Options
	adapterOpts []adapter.Option
	metrics     *observability.Metrics
	log         *logger.Logger
	active      atomic.Int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithStreamOptions sets the per-request stream options. Limit is ignored;
// the request's n parameter sets it.
func WithStreamOptions(o stream.Options) Option {
	return func(h *Handler) { h.streamOpts = o }
}

// WithAdapterOptions appends adapter options applied to every request.
func WithAdapterOptions(opts ...adapter.Option) Option {
	return func(h *Handler) { h.adapterOpts = append(h.adapterOpts, opts...) }
}

// WithMetrics records stream and request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithLogger sets the logger. Defaults to the "httpstream" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// WithServiceName sets the name reported by /health.
func WithServiceName(name string) Option {
	return func(h *Handler) { h.service = name }
}

// NewHandler creates a Handler. cfg should already have defaults applied.
func NewHandler(cfg Config, opts ...Option) *Handler {
	h := &Handler{cfg: cfg, service: "streamgen"}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get("httpstream")
	}
	return h
}

// Engine returns a gin engine with the middleware stack and every route.
func (h *Handler) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(recovery(h.log), requestID(), requestLogger(h.log))
	h.Register(engine)
	return engine
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.health)
	r.GET("/version", h.version)
	v1 := r.Group("/v1")
	v1.GET("/generators", h.generators)
	v1.GET("/bytes/:generator", h.bytes)
}

// Active returns the number of responses currently streaming.
func (h *Handler) Active() int64 { return h.active.Load() }

func (h *Handler) health(c *gin.Context) {
	sh := observability.CheckHealth(c.Request.Context(), h.service, version.Get().Version,
		observability.HealthCheckFunc(generatorsHealth),
		observability.HealthCheckFunc(h.streamsHealth),
	)
	status := http.StatusOK
	if sh.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, sh)
}

func generatorsHealth(context.Context) observability.Health {
	h := observability.Health{Name: "generators", Status: observability.HealthStatusUp}
	if len(generator.Names()) == 0 {
		h.Status = observability.HealthStatusDown
		h.Message = "no generators registered"
	}
	return h
}

func (h *Handler) streamsHealth(context.Context) observability.Health {
	active := h.Active()
	out := observability.Health{
		Name:    "streams",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"active": strconv.FormatInt(active, 10)},
	}
	if h.cfg.MaxConns > 0 && active >= int64(h.cfg.MaxConns) {
		out.Status = observability.HealthStatusDegraded
		out.Message = "at connection limit"
	}
	return out
}

func (h *Handler) version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

func (h *Handler) generators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": generator.List()})
}

// bytesQuery is the query string of GET /v1/bytes/:generator.
type bytesQuery struct {
	N      int64  `form:"n" validate:"required,gte=1"`
	Seed   uint64 `form:"seed"`
	Chunk  int    `form:"chunk" validate:"gte=0"`
	Digest string `form:"digest" validate:"omitempty,oneof=ripemd160 sha256 blake2b blake3"`
}

func (h *Handler) bytes(c *gin.Context) {
	name := c.Param("generator")

	var q bytesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, errors.Validation("Invalid query string.").WithCause(err))
		return
	}
	if err := validation.Validate(&q); err != nil {
		respondWithError(c, err)
		return
	}
	if q.N > h.cfg.MaxBytes {
		respondWithError(c, errors.InvalidArgument("n", "must be at most "+strconv.FormatInt(h.cfg.MaxBytes, 10)))
		return
	}

	factory, err := generator.New(name, q.Seed)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	op := observability.NewOperation("bytes", name, h.metrics)
	ctx, span := op.Start(ctx, observability.SpanHTTPBytes,
		attribute.Int64(observability.AttrBytes, q.N),
		attribute.Int64(observability.AttrSeed, int64(q.Seed)),
	)

	h.active.Add(1)
	defer h.active.Add(-1)

	sum, err := h.stream(ctx, c, name, factory, q)
	op.End(ctx, span, err, attribute.String(observability.AttrDigest, sum))
	if err == nil {
		return
	}
	if !c.Writer.Written() {
		respondWithError(c, err)
		return
	}
	// The status line is gone; dropping the connection is the only signal left.
	h.log.Error("stream aborted mid-body", logger.Fields(
		logger.FieldGenerator, name,
		logger.FieldBytes, c.Writer.Size(),
		logger.FieldError, err.Error(),
	))
	c.Abort()
}

// stream pushes the first q.N bytes of factory into the response and returns
// the body digest when one was requested.
func (h *Handler) stream(ctx context.Context, c *gin.Context, name string, factory producer.Factory, q bytesQuery) (string, error) {
	opts := append([]adapter.Option{adapter.WithLogger(h.log)}, h.adapterOpts...)
	if q.Chunk > 0 {
		opts = append(opts, adapter.WithChunkCeiling(q.Chunk))
	}
	if h.metrics != nil {
		opts = append(opts, adapter.WithObserver(h.metrics.Observer(ctx, name)))
	}
	so := h.streamOpts
	so.Limit = q.N
	r, err := stream.NewReadable(factory, so, opts...)
	if err != nil {
		return "", err
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("X-Stream-Id", r.Adapter().ID())

	var w io.Writer = c.Writer
	if h.cfg.RateLimit > 0 {
		w = newThrottledWriter(ctx, w, rate.NewLimiter(rate.Limit(h.cfg.RateLimit), h.cfg.RateLimit))
	}

	if q.Digest == "" {
		c.Header("Content-Length", strconv.FormatInt(q.N, 10))
		_, err = stream.Copy(ctx, w, r)
		return "", err
	}

	c.Header("Trailer", DigestTrailer)
	ht, err := digest.NewHashThrough(digest.Algorithm(q.Digest), w)
	if err != nil {
		return "", err
	}
	if _, err := stream.Copy(ctx, ht, r); err != nil {
		return "", err
	}
	sum := ht.Sum()
	c.Writer.Header().Set(DigestTrailer, sum)
	return sum, nil
}

// throttledWriter paces writes through a token bucket, one token per byte.
type throttledWriter struct {
	ctx context.Context
	w   io.Writer
	lim *rate.Limiter
}

func newThrottledWriter(ctx context.Context, w io.Writer, lim *rate.Limiter) *throttledWriter {
	return &throttledWriter{ctx: ctx, w: w, lim: lim}
}

func (t *throttledWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		n := min(len(p), t.lim.Burst())
		if err := t.lim.WaitN(t.ctx, n); err != nil {
			return written, errors.Canceled(err)
		}
		m, err := t.w.Write(p[:n])
		written += m
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}
