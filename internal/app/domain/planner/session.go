package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/booksync"
	"github.com/EthanH9977/JourneyXPro/internal/app/domain/generation"
	"github.com/EthanH9977/JourneyXPro/internal/app/domain/itinerary"
	"github.com/EthanH9977/JourneyXPro/internal/app/models"
	"github.com/EthanH9977/JourneyXPro/internal/app/observability/metrics"
)

type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
	StateAdjusting  State = "adjusting"
	StateSyncing    State = "syncing"
	StateError      State = "error"
)

const (
	HistoryKeyPrefix = "journeyx_trips"
	DefaultBookURL   = "https://journeyxbook.vercel.app"
)

// Generator produces a validated itinerary. Non-blank feedback asks for an
// adjustment of the request's previous plan.
type Generator interface {
	Generate(ctx context.Context, req models.TripRequest, feedback string) (*models.ItineraryResponse, error)
}

// Uploader pushes a plan to the remote travel book store.
type Uploader interface {
	Upload(ctx context.Context, in booksync.UploadInput) (*booksync.UploadResult, error)
}

// PersistentStore gets and sets one opaque blob by key.
type PersistentStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Dependencies struct {
	Generator Generator
	Uploader  Uploader
	Store     PersistentStore
	Logger    *zap.Logger
}

type Options struct {
	HistoryKey string
	BookURL    string
	// GenerationTimeout bounds each model call. Zero means no bound.
	GenerationTimeout time.Duration
	Now               func() time.Time
}

// Snapshot is a point in time copy of a session, safe to read and serialise
// while operations are pending.
type Snapshot struct {
	ID              string                  `json:"id"`
	State           State                   `json:"state"`
	Request         *models.TripRequest     `json:"request"`
	Plan            *models.TripPlan        `json:"plan"`
	GroundingChunks []models.GroundingChunk `json:"groundingChunks"`
	Error           string                  `json:"error,omitempty"`
	AdjustmentError string                  `json:"adjustmentError,omitempty"`
	AdjustmentOpen  bool                    `json:"adjustmentOpen"`
	SavedTrips      []models.SavedTrip      `json:"savedTrips"`
	CurrentSaved    bool                    `json:"currentSaved"`
	Syncing         bool                    `json:"syncing"`
	SyncError       string                  `json:"syncError,omitempty"`
	SyncMessage     string                  `json:"syncMessage,omitempty"`
	LastSyncedLink  string                  `json:"lastSyncedLink,omitempty"`
}

// Session is the planning state machine for one user. All methods are safe
// for concurrent use.
type Session struct {
	id     string
	deps   Dependencies
	opts   Options
	logger *zap.Logger

	// historyMu guards the stored saved list. Sessions sharing a history
	// key share it through the Registry.
	historyMu *sync.Mutex

	mu             sync.Mutex
	phase          State
	request        *models.TripRequest
	response       *models.ItineraryResponse
	genErr         string
	adjErr         string
	adjustmentOpen bool
	saved          []models.SavedTrip
	currentSaved   bool
	syncing        bool
	syncErr        string
	syncMsg        string
	lastLink       string
	// epoch advances on every generation start, Reset and Select; a
	// completion carrying an older epoch is dropped.
	epoch uint64
}

// NewSession builds an idle session and loads the saved history. An
// unreadable or corrupt history is logged and treated as empty.
func NewSession(ctx context.Context, id string, deps Dependencies, opts Options) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.HistoryKey == "" {
		opts.HistoryKey = HistoryKey(id)
	}
	if opts.BookURL == "" {
		opts.BookURL = DefaultBookURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		id:     id,
		deps:   deps,
		opts:   opts,
		logger: deps.Logger.With(zap.String("session_id", id)),
		phase:  StateIdle,
		saved:  []models.SavedTrip{},

		historyMu: &sync.Mutex{},
	}
	s.saved = s.loadHistory(ctx)
	return s
}

// HistoryKey is the store key of a client's saved trips.
func HistoryKey(clientID string) string {
	return HistoryKeyPrefix + ":" + clientID
}

func (s *Session) ID() string { return s.id }

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.phase
	if s.syncing && state == StateReady {
		state = StateSyncing
	}
	snap := Snapshot{
		ID:              s.id,
		State:           state,
		Request:         cloneRequest(s.request),
		GroundingChunks: []models.GroundingChunk{},
		Error:           s.genErr,
		AdjustmentError: s.adjErr,
		AdjustmentOpen:  s.adjustmentOpen,
		SavedTrips:      cloneSavedTrips(s.saved),
		CurrentSaved:    s.currentSaved,
		Syncing:         s.syncing,
		SyncError:       s.syncErr,
		SyncMessage:     s.syncMsg,
		LastSyncedLink:  s.lastLink,
	}
	if s.response != nil {
		resp := cloneResponse(s.response)
		snap.Plan = &resp.Plan
		snap.GroundingChunks = resp.GroundingChunks
	}
	return snap
}

// Plan returns a copy of the displayed plan, or nil.
func (s *Session) Plan() *models.TripPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.response == nil {
		return nil
	}
	plan := clonePlan(s.response.Plan)
	return &plan
}

// LastSyncedLink returns the link of the most recent successful sync.
func (s *Session) LastSyncedLink() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLink
}

type generationRun struct {
	epoch    uint64
	req      models.TripRequest
	feedback string
}

// Submit runs an initial generation and blocks until it completes.
func (s *Session) Submit(ctx context.Context, req models.TripRequest) error {
	run, err := s.beginSubmit(req)
	if err != nil {
		return err
	}
	return s.generate(ctx, run)
}

// SubmitAsync checks preconditions, moves the session to generating and runs
// the model call in the background. The channel yields the outcome once.
func (s *Session) SubmitAsync(ctx context.Context, req models.TripRequest) (<-chan error, error) {
	run, err := s.beginSubmit(req)
	if err != nil {
		return nil, err
	}
	return s.background(ctx, func(ctx context.Context) error { return s.generate(ctx, run) }), nil
}

// Adjust regenerates the current request with feedback and blocks until it
// completes. A failure keeps the displayed plan.
func (s *Session) Adjust(ctx context.Context, feedback string) error {
	run, err := s.beginAdjust(feedback)
	if err != nil {
		return err
	}
	return s.generate(ctx, run)
}

func (s *Session) AdjustAsync(ctx context.Context, feedback string) (<-chan error, error) {
	run, err := s.beginAdjust(feedback)
	if err != nil {
		return nil, err
	}
	return s.background(ctx, func(ctx context.Context) error { return s.generate(ctx, run) }), nil
}

func (s *Session) background(ctx context.Context, fn func(context.Context) error) <-chan error {
	done := make(chan error, 1)
	bg := context.WithoutCancel(ctx)
	go func() {
		done <- fn(bg)
		close(done)
	}()
	return done
}

func (s *Session) generationInFlight() bool {
	return s.phase == StateGenerating || s.phase == StateAdjusting
}

func (s *Session) beginSubmit(req models.TripRequest) (generationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generationInFlight() {
		return generationRun{}, ErrGenerationInFlight
	}
	s.epoch++
	s.phase = StateGenerating
	s.request = cloneRequest(&req)
	s.response = nil
	s.genErr = ""
	s.adjErr = ""
	s.currentSaved = false
	return generationRun{epoch: s.epoch, req: req}, nil
}

func (s *Session) beginAdjust(feedback string) (generationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generationInFlight() {
		return generationRun{}, ErrGenerationInFlight
	}
	if s.request == nil {
		s.adjErr = ErrNoActiveRequest.Error()
		return generationRun{}, ErrNoActiveRequest
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		s.adjErr = ErrEmptyFeedback.Error()
		return generationRun{}, ErrEmptyFeedback
	}
	s.epoch++
	s.phase = StateAdjusting
	s.genErr = ""
	s.adjErr = ""
	s.currentSaved = false
	return generationRun{epoch: s.epoch, req: *s.request, feedback: feedback}, nil
}

func (s *Session) generate(ctx context.Context, run generationRun) error {
	ctx = generation.WithSessionID(ctx, s.id)
	var cancel context.CancelFunc
	if s.opts.GenerationTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.opts.GenerationTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	resp, err := s.deps.Generator.Generate(ctx, run.req, run.feedback)
	return s.finishGeneration(run, resp, err)
}

func (s *Session) finishGeneration(run generationRun, resp *models.ItineraryResponse, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	adjusting := run.feedback != ""
	if run.epoch != s.epoch {
		s.logger.Info("Discarding stale generation result",
			zap.Bool("adjustment", adjusting),
			zap.Uint64("run_epoch", run.epoch),
			zap.Uint64("session_epoch", s.epoch),
			zap.Bool("failed", err != nil))
		return ErrSuperseded
	}

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = DefaultGenerationErrorMessage
		}
		if adjusting {
			s.adjErr = msg
			if s.response != nil {
				s.phase = StateReady
			} else {
				s.genErr = msg
				s.phase = StateError
			}
		} else {
			s.genErr = msg
			s.response = nil
			s.phase = StateError
		}
		s.logger.Warn("Itinerary generation failed", zap.Bool("adjustment", adjusting), zap.Error(err))
		return err
	}

	s.response = cloneResponse(resp)
	if s.response.GroundingChunks == nil {
		s.response.GroundingChunks = []models.GroundingChunk{}
	}
	s.phase = StateReady
	if adjusting {
		s.adjustmentOpen = false
	}
	s.logger.Info("Itinerary ready",
		zap.Bool("adjustment", adjusting),
		zap.String("title", resp.Plan.TripTitle),
		zap.Int("days", len(resp.Plan.Days)))
	return nil
}

// OpenAdjustment clears the previous adjustment error and opens the
// adjustment surface.
func (s *Session) OpenAdjustment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adjErr = ""
	s.adjustmentOpen = true
}

// Reset returns to idle. Any in-flight generation is orphaned.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.phase = StateIdle
	s.request = nil
	s.response = nil
	s.genErr = ""
	s.adjErr = ""
	s.adjustmentOpen = false
	s.currentSaved = false
}

// LoadSample installs the built-in Kyoto plan without a model call.
func (s *Session) LoadSample() {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := itinerary.SampleRequest()
	s.epoch++
	s.phase = StateReady
	s.request = &req
	s.response = &models.ItineraryResponse{Plan: itinerary.SamplePlan(), GroundingChunks: []models.GroundingChunk{}}
	s.genErr = ""
	s.adjErr = ""
	s.currentSaved = false
}

// Select restores a saved trip as the displayed plan.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, trip := range s.saved {
		if trip.ID != id {
			continue
		}
		s.epoch++
		details := trip.Details
		s.request = &details
		s.response = cloneResponse(&trip.Response)
		s.phase = StateReady
		s.genErr = ""
		s.adjErr = ""
		s.currentSaved = true
		return nil
	}
	return ErrTripNotFound
}

// Save prepends the displayed plan to the history. The stored list is
// re-read under the history lock so saves from other sessions of the same
// client survive. In-memory state only changes once the write succeeded.
func (s *Session) Save(ctx context.Context) (*models.SavedTrip, error) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.mu.Lock()
	if s.request == nil || s.response == nil {
		s.mu.Unlock()
		return nil, ErrNoPlan
	}
	trip := models.SavedTrip{
		ID:        uuid.NewString(),
		Timestamp: s.opts.Now().UnixMilli(),
		Details:   *s.request,
		Response:  *cloneResponse(s.response),
	}
	epoch := s.epoch
	s.mu.Unlock()

	current, err := s.readHistory(ctx)
	if err != nil {
		return nil, err
	}
	next := append([]models.SavedTrip{trip}, current...)
	if err := s.persistHistory(ctx, next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.saved = next
	if s.epoch == epoch {
		s.currentSaved = true
	}
	s.mu.Unlock()

	s.logger.Info("Trip saved", zap.String("trip_id", trip.ID), zap.Int("history_size", len(next)))
	return &trip, nil
}

// Delete removes a saved trip from the stored history.
func (s *Session) Delete(ctx context.Context, id string) error {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	current, err := s.readHistory(ctx)
	if err != nil {
		return err
	}
	next := make([]models.SavedTrip, 0, len(current))
	for _, trip := range current {
		if trip.ID != id {
			next = append(next, trip)
		}
	}
	if len(next) == len(current) {
		s.mu.Lock()
		s.saved = current
		s.mu.Unlock()
		return ErrTripNotFound
	}
	if err := s.persistHistory(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.saved = next
	s.mu.Unlock()
	return nil
}

func (s *Session) loadHistory(ctx context.Context) []models.SavedTrip {
	trips, err := s.readHistory(ctx)
	if err != nil {
		s.logger.Warn("Failed to read saved trips", zap.String("key", s.opts.HistoryKey), zap.Error(err))
		return []models.SavedTrip{}
	}
	return trips
}

// readHistory returns the stored saved list. A corrupt blob is logged and
// read as empty; a store failure is returned.
func (s *Session) readHistory(ctx context.Context) ([]models.SavedTrip, error) {
	start := time.Now()
	raw, ok, err := s.deps.Store.Get(ctx, s.opts.HistoryKey)
	recordStoreOp(ctx, "get", start, err)
	if err != nil {
		return nil, fmt.Errorf("read saved trips: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []models.SavedTrip{}, nil
	}
	var trips []models.SavedTrip
	if err := json.Unmarshal(raw, &trips); err != nil {
		s.logger.Warn("Failed to parse saved trips", zap.String("key", s.opts.HistoryKey), zap.Error(err))
		return []models.SavedTrip{}, nil
	}
	if trips == nil {
		trips = []models.SavedTrip{}
	}
	return trips, nil
}

func (s *Session) persistHistory(ctx context.Context, trips []models.SavedTrip) error {
	raw, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("encode saved trips: %w", err)
	}
	start := time.Now()
	err = s.deps.Store.Set(ctx, s.opts.HistoryKey, raw)
	recordStoreOp(ctx, "set", start, err)
	if err != nil {
		s.logger.Error("Failed to persist saved trips", zap.String("key", s.opts.HistoryKey), zap.Error(err))
		return fmt.Errorf("persist saved trips: %w", err)
	}
	return nil
}

func recordStoreOp(ctx context.Context, op string, start time.Time, err error) {
	metrics.Get().StoreOpDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("error", err != nil),
	))
}

type syncRun struct {
	input booksync.UploadInput
}

// Sync uploads the displayed plan and blocks until the upload settles.
// Success or failure only touches sync status, never the plan.
func (s *Session) Sync(ctx context.Context, account, title string) (*booksync.UploadResult, error) {
	run, err := s.beginSync(account, title)
	if err != nil {
		return nil, err
	}
	return s.sync(ctx, run)
}

func (s *Session) SyncAsync(ctx context.Context, account, title string) (<-chan error, error) {
	run, err := s.beginSync(account, title)
	if err != nil {
		return nil, err
	}
	return s.background(ctx, func(ctx context.Context) error {
		_, err := s.sync(ctx, run)
		return err
	}), nil
}

func (s *Session) beginSync(account, title string) (syncRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.syncing {
		return syncRun{}, ErrSyncInFlight
	}
	if s.request == nil || s.response == nil {
		s.syncErr = booksync.ErrNoPlan.Error()
		s.syncMsg = ""
		return syncRun{}, booksync.ErrNoPlan
	}
	plan := clonePlan(s.response.Plan)
	s.syncing = true
	s.syncErr = ""
	s.syncMsg = ""
	return syncRun{input: booksync.UploadInput{
		Account: account,
		Title:   title,
		Plan:    &plan,
		Request: cloneRequest(s.request),
	}}, nil
}

func (s *Session) sync(ctx context.Context, run syncRun) (*booksync.UploadResult, error) {
	ctx, span := otel.Tracer("PlannerSession").Start(ctx, "Sync", trace.WithAttributes(
		attribute.String("session.id", s.id),
	))
	defer span.End()

	start := time.Now()
	result, err := s.deps.Uploader.Upload(ctx, run.input)

	category := "ok"
	if err != nil {
		category = string(booksync.Classify(err))
	}
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("category", category))
	m.SyncsTotal.Add(ctx, 1, attrs)
	m.SyncDuration.Record(ctx, time.Since(start).Seconds(), attrs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, category)
		s.syncErr = booksync.UserMessage(err)
		return nil, err
	}

	s.lastLink = BookLink(s.opts.BookURL, strings.TrimSpace(run.input.Account), result.FileID)
	s.syncMsg = fmt.Sprintf("成功同步！您的行程 ID 為：%s", result.FileID)
	span.SetStatus(codes.Ok, "synced")
	return result, nil
}

// BookLink builds the viewer URL of a synced book.
func BookLink(base, account, fileID string) string {
	return fmt.Sprintf("%s?user=%s&file=%s", base, queryComponent(account), queryComponent(fileID))
}

// queryComponent escapes like encodeURIComponent: spaces become %20.
func queryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
