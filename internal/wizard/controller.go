package wizard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/service"
	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"go.uber.org/zap"
)

// ActionCreateBatch is the permission checked before submission.
const ActionCreateBatch = "create_batch"

// Scoped error slots. Reference-data failures use "reference.<section>".
const (
	SlotDetails       = "details"
	SlotEligible      = "eligible"
	SlotCompatibility = "compatibility"
	SlotContainers    = "containers"
	SlotSubmit        = "submit"
	slotReferenceFmt  = "reference.%s"
)

// Options configures a Controller. The zero value is usable: every action is
// permitted, no hooks fire and the default QC suggester is used.
type Options struct {
	SessionID string
	// QCRequiredBatchTypes lists batch type ids that cannot be submitted without QC.
	QCRequiredBatchTypes []string
	CanPerform           func(action string) bool
	OnCreated            func(client.CreatedBatch)
	OnCancelled          func()
	Suggester            service.QCSuggester
	Metrics              *utils.Metrics
	// PageSize is sent as the eligible-samples page size; 0 leaves it to the backend.
	PageSize int
}

type eligibleState struct {
	loading bool
	page    client.EligibleSamplesPage
	message string
}

type compatibilityState struct {
	loading bool
	result  *client.CompatibilityResult
}

// Controller is one wizard session. All methods are safe for concurrent use; state
// changes are serialized, and backend responses are applied only while their
// request token is current.
type Controller struct {
	lims       client.LIMSClient
	opts       Options
	log        *zap.Logger
	queries    *service.EligibilityQueryBuilder
	compat     *service.CompatibilityOrchestrator
	references *service.ReferenceLoader
	tracker    *service.RequestTracker
	suggester  service.QCSuggester

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	closed         bool
	submitting     bool
	step           Step
	draft          BatchFormData
	reference      *service.ReferenceData
	containerIndex map[string]client.Container
	analysisIDs    []string
	projectIDs     []string
	includeExpired bool
	sort           service.SortSpec
	eligible       eligibleState
	compatibility  compatibilityState
	subBatch       service.SubBatchPlanner
	errs           map[string]string
	validation     *ValidationError
}

// New creates a session with an empty draft on the Details step.
func New(lims client.LIMSClient, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	suggester := opts.Suggester
	if suggester == nil {
		suggester = service.NewQCSuggester()
	}
	c := &Controller{
		lims:           lims,
		opts:           opts,
		log:            utils.WithSession("wizard", opts.SessionID),
		queries:        service.NewEligibilityQueryBuilder(opts.PageSize),
		compat:         service.NewCompatibilityOrchestrator(lims, opts.Metrics),
		references:     service.NewReferenceLoader(lims),
		tracker:        service.NewRequestTracker(opts.Metrics),
		suggester:      suggester,
		ctx:            ctx,
		cancel:         cancel,
		containerIndex: make(map[string]client.Container),
		reference:      service.NewReferenceData(),
	}
	c.resetLocked()
	opts.Metrics.SessionOpened()
	return c
}

// Mount loads reference data for the given project scope. Failing sections are
// reported in their own error slots; Mount itself only fails on a closed session.
func (c *Controller) Mount(ctx context.Context, projectIDs []string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.projectIDs = uniqueIDs(projectIDs)
	scope := slices.Clone(c.projectIDs)
	// supersede any container reload issued before mount
	c.tracker.Invalidate(service.RequestContainers)
	c.mu.Unlock()

	data := c.references.Load(ctx, scope)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.reference = data
	c.indexContainersLocked(data.Containers)
	c.draft.recomputeCrossProject(c.containerIndex)
	for section, err := range data.Errors {
		c.errs[fmt.Sprintf(slotReferenceFmt, section)] = errorMessage(err, fmt.Sprintf("Failed to load %s", strings.ReplaceAll(section, "_", " ")))
	}
	c.log.Debug("Mounted wizard",
		zap.Int("project_count", len(scope)),
		zap.Int("failed_sections", len(data.Errors)))
	return nil
}

// UpdateDetails replaces the Details-step fields of the draft.
func (c *Controller) UpdateDetails(in Details) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.draft.applyDetails(in)
	delete(c.errs, SlotDetails)
	return nil
}

// Next advances one step. Leaving Details requires a name and a status; leaving
// EligibleSamples starts a compatibility check when two or more containers are selected
// but never waits for it or blocks on its outcome.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	switch c.step {
	case StepDetails:
		if messages := c.draft.validateDetails(); len(messages) > 0 {
			c.errs[SlotDetails] = strings.Join(messages, "; ")
			return &ValidationError{Step: StepDetails, Messages: messages}
		}
		delete(c.errs, SlotDetails)
		c.enterLocked(StepEligibleSamples)
	case StepEligibleSamples:
		c.enterLocked(StepQC)
		if c.compat.ShouldValidate(c.draft.ContainerIDs) {
			c.validateCompatibilityLocked()
		}
		c.autoSuggestLocked()
	case StepQC:
		c.enterLocked(StepReview)
	default:
		return ErrLastStep
	}
	return nil
}

// Back returns to the previous step.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.step == StepDetails {
		return ErrFirstStep
	}
	c.enterLocked(c.step - 1)
	return nil
}

// GoTo jumps back to any earlier step. Forward jumps are rejected.
func (c *Controller) GoTo(target Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	switch {
	case !target.Valid():
		return ErrInvalidStep
	case target > c.step:
		return ErrForwardJump
	case target == c.step:
		return nil
	}
	c.enterLocked(target)
	return nil
}

func (c *Controller) enterLocked(step Step) {
	c.log.Debug("Changing step",
		zap.String("from", c.step.String()),
		zap.String(utils.FieldStep, step.String()))
	c.step = step
	if step == StepEligibleSamples {
		c.fetchEligibleLocked()
	}
}

// SetAnalysisFilter changes the analyses samples are listed for.
func (c *Controller) SetAnalysisFilter(analysisIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.analysisIDs = uniqueIDs(analysisIDs)
	if c.step == StepEligibleSamples {
		c.fetchEligibleLocked()
	}
	return nil
}

// SetIncludeExpired toggles whether expired samples are listed.
func (c *Controller) SetIncludeExpired(include bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.includeExpired == include {
		return nil
	}
	c.includeExpired = include
	if c.step == StepEligibleSamples {
		c.fetchEligibleLocked()
	}
	return nil
}

// SetProjectScope changes the projects in scope. The container catalogue is reloaded
// and, on the EligibleSamples step, so are the samples.
func (c *Controller) SetProjectScope(projectIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.projectIDs = uniqueIDs(projectIDs)
	c.reloadContainersLocked()
	if c.step == StepEligibleSamples {
		c.fetchEligibleLocked()
	}
	return nil
}

// RefreshEligible re-issues the eligible-samples query.
func (c *Controller) RefreshEligible() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.fetchEligibleLocked()
	return nil
}

// fetchEligibleLocked issues a new eligible-samples request, superseding any in flight.
// With no analysis selected nothing is sent and the grid is emptied.
func (c *Controller) fetchEligibleLocked() {
	delete(c.errs, SlotEligible)
	query, ok := c.queries.Build(c.analysisIDs, c.projectIDs, c.includeExpired)
	if !ok {
		c.tracker.Invalidate(service.RequestEligibleSamples)
		c.eligible = eligibleState{page: service.Normalize(nil), message: service.NoAnalysisMessage}
		return
	}
	token := c.tracker.Issue(service.RequestEligibleSamples)
	c.eligible.loading = true
	c.eligible.message = ""
	log := c.log.With(zap.Uint64(utils.FieldToken, uint64(token)))
	log.Debug("Fetching eligible samples", zap.String("test_ids", query.TestIDs))

	c.spawn(func(ctx context.Context) {
		page, err := c.lims.GetEligibleSamples(ctx, query)

		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.tracker.Accept(service.RequestEligibleSamples, token) {
			return
		}
		c.eligible.loading = false
		if err != nil {
			log.Warn("Failed to fetch eligible samples", zap.Error(err))
			c.eligible.page = service.Normalize(nil)
			c.errs[SlotEligible] = errorMessage(err, MessageEligibleFailed)
			return
		}
		c.eligible.page = service.Normalize(page)
	})
}

func (c *Controller) reloadContainersLocked() {
	delete(c.errs, SlotContainers)
	token := c.tracker.Issue(service.RequestContainers)
	scope := slices.Clone(c.projectIDs)

	c.spawn(func(ctx context.Context) {
		containers, err := c.lims.GetContainers(ctx, scope)

		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.tracker.Accept(service.RequestContainers, token) {
			return
		}
		if err != nil {
			c.log.Warn("Failed to reload containers", zap.Error(err))
			c.errs[SlotContainers] = errorMessage(err, MessageContainersFailed)
			return
		}
		if containers == nil {
			containers = []client.Container{}
		}
		c.reference.Containers = containers
		c.indexContainersLocked(containers)
		c.draft.recomputeCrossProject(c.containerIndex)
	})
}

// indexContainersLocked remembers every container seen so selections made under an
// earlier project scope still resolve to their projects.
func (c *Controller) indexContainersLocked(containers []client.Container) {
	for _, container := range containers {
		c.containerIndex[container.ID] = container
	}
}

// SetSort applies a column sort to the sample grid for this session.
func (c *Controller) SetSort(spec service.SortSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.sort = spec
	return nil
}

// ClearSort restores the default expiration/due ordering.
func (c *Controller) ClearSort() error {
	return c.SetSort(service.SortSpec{})
}

// SelectContainers replaces the container selection. cross_project is recomputed and
// any previous compatibility result is dropped.
func (c *Controller) SelectContainers(containerIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.draft.ContainerIDs = uniqueIDs(containerIDs)
	c.draft.recomputeCrossProject(c.containerIndex)
	c.tracker.Invalidate(service.RequestCompatibility)
	c.compatibility = compatibilityState{}
	delete(c.errs, SlotCompatibility)
	return nil
}

// ValidateCompatibility checks the current selection. Fewer than two containers
// clears any result without calling the backend.
func (c *Controller) ValidateCompatibility() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.validateCompatibilityLocked()
	return nil
}

func (c *Controller) validateCompatibilityLocked() {
	delete(c.errs, SlotCompatibility)
	ids := slices.Clone(c.draft.ContainerIDs)
	if !c.compat.ShouldValidate(ids) {
		c.tracker.Invalidate(service.RequestCompatibility)
		c.compatibility = compatibilityState{}
		return
	}
	token := c.tracker.Issue(service.RequestCompatibility)
	c.compatibility = compatibilityState{loading: true}

	c.spawn(func(ctx context.Context) {
		result, err := c.compat.Validate(ctx, ids)

		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.tracker.Accept(service.RequestCompatibility, token) {
			return
		}
		c.compatibility.loading = false
		if err != nil {
			c.errs[SlotCompatibility] = service.CompatibilityFailedMessage
			return
		}
		c.compatibility.result = result
	})
}

// SuggestQC applies the QC suggestion for the current selection. It never replaces
// existing additions and reports whether anything was applied.
func (c *Controller) SuggestQC() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	return c.autoSuggestLocked(), nil
}

func (c *Controller) autoSuggestLocked() bool {
	if len(c.draft.QCAdditions) > 0 {
		return false
	}
	suggestions := c.suggester.Suggest(len(c.draft.ContainerIDs), c.reference.QCTypes)
	if len(suggestions) == 0 {
		return false
	}
	c.draft.QCAdditions = suggestions
	c.log.Debug("Applied QC suggestion", zap.Int("qc_count", len(suggestions)))
	return true
}

// AddQC appends a QC addition and returns its index.
func (c *Controller) AddQC(qc service.QCAddition) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	c.draft.QCAdditions = append(c.draft.QCAdditions, trimQC(qc))
	return len(c.draft.QCAdditions) - 1, nil
}

// UpdateQC replaces the QC addition at index.
func (c *Controller) UpdateQC(index int, qc service.QCAddition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(c.draft.QCAdditions) {
		return ErrQCIndex
	}
	c.draft.QCAdditions[index] = trimQC(qc)
	return nil
}

// RemoveQC deletes the QC addition at index.
func (c *Controller) RemoveQC(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(c.draft.QCAdditions) {
		return ErrQCIndex
	}
	c.draft.QCAdditions = slices.Delete(c.draft.QCAdditions, index, index+1)
	return nil
}

// OpenSubBatches opens the divergent-analyses dialog.
func (c *Controller) OpenSubBatches() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.subBatch.Open(c.draft.DivergentAnalyses)
	return nil
}

// ToggleSubBatch flips one analysis in the open dialog.
func (c *Controller) ToggleSubBatch(analysisID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.subBatch.IsOpen() {
		return ErrDialogClosed
	}
	c.subBatch.Toggle(analysisID)
	return nil
}

// ConfirmSubBatches copies the dialog selection into the draft.
func (c *Controller) ConfirmSubBatches() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.subBatch.IsOpen() {
		return ErrDialogClosed
	}
	c.draft.DivergentAnalyses = c.subBatch.Confirm()
	return nil
}

// DismissSubBatches closes the dialog, leaving the draft untouched.
func (c *Controller) DismissSubBatches() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.subBatch.Dismiss()
	return nil
}

// Submit validates the draft and creates the batch. Rule violations return a
// *ValidationError without any backend call. On success the host is notified and the
// wizard starts over with an empty draft; on failure it stays on Review.
func (c *Controller) Submit(ctx context.Context) (*client.CreatedBatch, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if c.step != StepReview {
		c.mu.Unlock()
		return nil, ErrNotOnReview
	}
	messages := c.submissionMessagesLocked()
	if len(messages) > 0 {
		c.validation = &ValidationError{Step: StepReview, Messages: messages}
		c.errs[SlotSubmit] = strings.Join(messages, "; ")
		c.opts.Metrics.Submission("rejected")
		c.log.Info("Submission rejected",
			zap.String(utils.FieldAction, ActionCreateBatch),
			zap.Strings("reasons", messages))
		verr := c.validation
		c.mu.Unlock()
		return nil, verr
	}
	c.validation = nil
	delete(c.errs, SlotSubmit)
	payload := c.draft.Payload()
	c.submitting = true
	c.mu.Unlock()

	created, err := c.lims.CreateBatch(ctx, payload)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.opts.Metrics.Submission("failed")
		if !c.closed {
			c.errs[SlotSubmit] = errorMessage(err, MessageSubmitFailed)
		}
		c.mu.Unlock()
		c.log.Error("Failed to create batch",
			zap.String(utils.FieldAction, ActionCreateBatch),
			zap.String("batch_name", payload.Name),
			zap.Error(err))
		return nil, fmt.Errorf("creating batch '%s': %w", payload.Name, err)
	}
	if created == nil {
		created = &client.CreatedBatch{}
	}
	c.opts.Metrics.Submission("created")
	if !c.closed {
		c.resetLocked()
	}
	onCreated := c.opts.OnCreated
	c.mu.Unlock()

	c.log.Info("Created batch",
		zap.String(utils.FieldBatchID, created.ID),
		zap.Int("container_count", len(payload.ContainerIDs)),
		zap.Bool("cross_project", payload.CrossProject))
	if onCreated != nil {
		onCreated(*created)
	}
	return created, nil
}

func (c *Controller) submissionMessagesLocked() []string {
	var messages []string
	if c.opts.CanPerform != nil && !c.opts.CanPerform(ActionCreateBatch) {
		messages = append(messages, MessagePermissionDenied)
	}
	return append(messages, c.draft.validateSubmission(c.opts.QCRequiredBatchTypes)...)
}

// Cancel discards the draft, returns to Details and notifies the host.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.resetLocked()
	onCancelled := c.opts.OnCancelled
	c.mu.Unlock()

	c.log.Info("Wizard cancelled")
	if onCancelled != nil {
		onCancelled()
	}
	return nil
}

// resetLocked starts a fresh draft. Reference data and project scope are kept.
func (c *Controller) resetLocked() {
	c.tracker.Invalidate(service.RequestEligibleSamples)
	c.tracker.Invalidate(service.RequestCompatibility)
	c.step = StepDetails
	c.draft = newDraft()
	c.analysisIDs = []string{}
	c.includeExpired = false
	c.sort = service.SortSpec{}
	c.eligible = eligibleState{page: service.Normalize(nil), message: service.NoAnalysisMessage}
	c.compatibility = compatibilityState{}
	c.subBatch.Dismiss()
	c.validation = nil
	errs := make(map[string]string)
	for slot, msg := range c.errs {
		if strings.HasPrefix(slot, "reference.") || slot == SlotContainers {
			errs[slot] = msg
		}
	}
	c.errs = errs
}

// Close unmounts the session: in-flight responses are dropped and the session context
// is cancelled. Close waits for background requests to return.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.tracker.Close()
	c.cancel()
	c.opts.Metrics.SessionClosed()
	c.mu.Unlock()

	c.wg.Wait()
	c.log.Debug("Wizard closed")
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Wait blocks until every background request issued so far has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// spawn runs fn on a tracked goroutine bound to the session context. Callers hold c.mu.
func (c *Controller) spawn(fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
