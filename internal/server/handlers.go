package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/config"
	"github.com/anmicius0/lims-batch-composer/internal/service"
	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"github.com/anmicius0/lims-batch-composer/internal/wizard"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler bundles request-time dependencies for the API routes.
type Handler struct {
	cfg      *config.Config
	sessions *SessionManager
	store    *SessionStore
}

// newHandler constructs a Handler with attached dependencies.
func newHandler(cfg *config.Config, store *SessionStore, sessions *SessionManager) *Handler {
	return &Handler{
		cfg:      cfg,
		sessions: sessions,
		store:    store,
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": StatusHealthy, "sessions": h.store.Len()})
}

func (h *Handler) openWizard(c *gin.Context) {
	// The body is optional; an empty one opens an unscoped wizard
	var req openWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		invalidBody(c, err)
		return
	}

	session, err := h.sessions.Open(c.Request.Context(), c.GetString(contextKeyRole), req.ProjectIDs)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	h.respond(c, http.StatusCreated, session)
}

func (h *Handler) getWizard(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	// reading the wizard counts as activity for idle eviction
	_ = h.store.Update(session.ID, func(*Session) {})
	h.respond(c, http.StatusOK, session)
}

func (h *Handler) closeWizard(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.Controller.Cancel(); err != nil && !errors.Is(err, wizard.ErrClosed) {
		h.fail(c, session.ID, err)
		return
	}
	h.sessions.Close(session.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": MessageWizardClosed})
}

func (h *Handler) updateDetails(c *gin.Context) {
	var req detailsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.UpdateDetails(req.toDetails())
	})
}

func (h *Handler) next(c *gin.Context) {
	h.act(c, (*wizard.Controller).Next)
}

func (h *Handler) back(c *gin.Context) {
	h.act(c, (*wizard.Controller).Back)
}

func (h *Handler) goTo(c *gin.Context) {
	var req gotoRequest
	if !bindJSON(c, &req) {
		return
	}
	step, err := wizard.ParseStep(req.Step)
	if err != nil {
		invalidBody(c, err)
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.GoTo(step)
	})
}

func (h *Handler) setAnalyses(c *gin.Context) {
	var req analysesRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.SetAnalysisFilter(req.AnalysisIDs)
	})
}

func (h *Handler) setIncludeExpired(c *gin.Context) {
	var req includeExpiredRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.SetIncludeExpired(*req.IncludeExpired)
	})
}

func (h *Handler) setProjects(c *gin.Context) {
	var req projectsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.SetProjectScope(req.ProjectIDs)
	})
}

func (h *Handler) refresh(c *gin.Context) {
	h.act(c, (*wizard.Controller).RefreshEligible)
}

func (h *Handler) setSort(c *gin.Context) {
	var req sortRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		if req.Column == "" {
			return ctrl.ClearSort()
		}
		return ctrl.SetSort(req.toSpec())
	})
}

func (h *Handler) selectContainers(c *gin.Context) {
	var req containersRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.SelectContainers(req.ContainerIDs)
	})
}

func (h *Handler) validateCompatibility(c *gin.Context) {
	h.act(c, (*wizard.Controller).ValidateCompatibility)
}

func (h *Handler) suggestQC(c *gin.Context) {
	h.act(c, func(ctrl *wizard.Controller) error {
		_, err := ctrl.SuggestQC()
		return err
	})
}

func (h *Handler) addQC(c *gin.Context) {
	var req qcRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		_, err := ctrl.AddQC(req.toAddition())
		return err
	})
}

func (h *Handler) updateQC(c *gin.Context) {
	index, ok := qcIndex(c)
	if !ok {
		return
	}
	var req qcRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.UpdateQC(index, req.toAddition())
	})
}

func (h *Handler) removeQC(c *gin.Context) {
	index, ok := qcIndex(c)
	if !ok {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.RemoveQC(index)
	})
}

func (h *Handler) openSubBatches(c *gin.Context) {
	h.act(c, (*wizard.Controller).OpenSubBatches)
}

func (h *Handler) toggleSubBatch(c *gin.Context) {
	var req toggleRequest
	if !bindJSON(c, &req) {
		return
	}
	h.act(c, func(ctrl *wizard.Controller) error {
		return ctrl.ToggleSubBatch(req.AnalysisID)
	})
}

func (h *Handler) confirmSubBatches(c *gin.Context) {
	h.act(c, (*wizard.Controller).ConfirmSubBatches)
}

func (h *Handler) dismissSubBatches(c *gin.Context) {
	h.act(c, (*wizard.Controller).DismissSubBatches)
}

func (h *Handler) submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	created, err := session.Controller.Submit(c.Request.Context())
	if err != nil {
		h.fail(c, session.ID, err)
		return
	}
	respBuilder := newResponseBuilder()
	c.JSON(http.StatusCreated, respBuilder.BuildSubmitResponse(created, session.Controller.View()))
}

// session resolves the :id parameter. Sessions are only visible to the role that
// opened them.
func (h *Handler) session(c *gin.Context) (*Session, bool) {
	id := c.Param("id")
	session, ok := h.store.Get(id)
	if !ok || session.Role != c.GetString(contextKeyRole) || session.Controller.Closed() {
		utils.Logger.Debug("Session not found",
			zap.String(utils.FieldSessionID, id))
		respBuilder := newResponseBuilder()
		c.JSON(http.StatusNotFound, respBuilder.BuildErrorResponse(
			ErrorCodeNotFound,
			fmt.Sprintf(SessionNotFoundMessageFmt, id),
			nil,
		))
		return nil, false
	}
	return session, true
}

// act runs action against the session and renders the resulting view.
func (h *Handler) act(c *gin.Context, action func(*wizard.Controller) error) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := action(session.Controller); err != nil {
		h.fail(c, session.ID, err)
		return
	}
	_ = h.store.Update(session.ID, func(*Session) {})
	h.respond(c, http.StatusOK, session)
}

func (h *Handler) respond(c *gin.Context, status int, session *Session) {
	snapshot, ok := h.store.Snapshot(session.ID)
	if !ok {
		snapshot = *session
	}
	respBuilder := newResponseBuilder()
	c.JSON(status, respBuilder.BuildSessionResponse(snapshot, session.Controller.View()))
}

// fail maps controller errors to HTTP responses.
func (h *Handler) fail(c *gin.Context, sessionID string, err error) {
	respBuilder := newResponseBuilder()

	var verr *wizard.ValidationError
	var httpErr *client.HTTPError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, respBuilder.BuildValidationFailedResponse(verr))
	case errors.Is(err, service.ErrUnknownSortColumn):
		c.JSON(http.StatusUnprocessableEntity, respBuilder.BuildErrorResponse(
			ErrorCodeValidationFailed,
			MessageValidationFailed,
			err.Error(),
		))
	case errors.Is(err, wizard.ErrClosed):
		c.JSON(http.StatusNotFound, respBuilder.BuildErrorResponse(
			ErrorCodeNotFound,
			fmt.Sprintf(SessionNotFoundMessageFmt, sessionID),
			nil,
		))
	case errors.Is(err, wizard.ErrFirstStep),
		errors.Is(err, wizard.ErrLastStep),
		errors.Is(err, wizard.ErrForwardJump),
		errors.Is(err, wizard.ErrInvalidStep),
		errors.Is(err, wizard.ErrNotOnReview),
		errors.Is(err, wizard.ErrSubmitInProgress),
		errors.Is(err, wizard.ErrQCIndex),
		errors.Is(err, wizard.ErrDialogClosed):
		c.JSON(http.StatusConflict, respBuilder.BuildErrorResponse(
			ErrorCodeInvalidTransition,
			MessageInvalidTransition,
			err.Error(),
		))
	case errors.As(err, &httpErr):
		utils.WithSession("handler", sessionID).Warn("Backend rejected request",
			zap.Int(utils.FieldStatusCode, httpErr.StatusCode),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, respBuilder.BuildErrorResponse(
			ErrorCodeBackendError,
			httpErr.Message(),
			nil,
		))
	default:
		utils.WithSession("handler", sessionID).Error("Backend request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, respBuilder.BuildErrorResponse(
			ErrorCodeBackendError,
			client.GenericErrorMessage,
			err.Error(),
		))
	}
}

func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		invalidBody(c, err)
		return false
	}
	return true
}

func invalidBody(c *gin.Context, err error) {
	utils.Logger.Error("Invalid request body",
		zap.Error(err))
	respBuilder := newResponseBuilder()
	c.JSON(http.StatusUnprocessableEntity, respBuilder.BuildErrorResponse(
		ErrorCodeInvalidRequestBody,
		MessageInvalidRequestBody,
		err.Error(),
	))
}

func qcIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		invalidBody(c, fmt.Errorf("parsing QC index '%s': %w", c.Param("index"), err))
		return 0, false
	}
	return index, true
}

// authMiddleware accepts either bearer token and records the granted role.
func authMiddleware(fullToken, readOnlyToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		var role string
		switch {
		case found && tokenMatches(token, fullToken):
			role = RoleFull
		case found && tokenMatches(token, readOnlyToken):
			role = RoleReadOnly
		}
		if role == "" {
			utils.Logger.Warn("Unauthorized access attempt",
				zap.String(utils.FieldPath, c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": MessageInvalidToken})
			c.Abort()
			return
		}
		c.Set(contextKeyRole, role)
		c.Next()
	}
}

func tokenMatches(got, want string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
