package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-lifecycle/internal/application"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/interface/middleware"
	"github.com/oksasatya/go-user-lifecycle/pkg/response"
	"github.com/oksasatya/go-user-lifecycle/pkg/validation"
)

type UserHandler struct {
	Svc               *userapp.Service
	Logger            *logrus.Logger
	VerifyRedirectURL string
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, verifyRedirectURL string) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, VerifyRedirectURL: verifyRedirectURL}
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Verify(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	code := c.Query("certificationCode")
	if _, err := h.Svc.VerifyEmail(c.Request.Context(), id, code); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Redirect(http.StatusFound, h.VerifyRedirectURL)
}

// GetMe returns the caller's profile and records the visit as a login.
func (h *UserHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.Svc.GetByEmail(ctx, c.GetString(middleware.CtxEmailKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	u, err = h.Svc.Login(ctx, u.ID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toMyProfileResponse(u))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	ctx := c.Request.Context()
	u, err := h.Svc.GetByEmail(ctx, c.GetString(middleware.CtxEmailKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	u, err = h.Svc.Update(ctx, u.ID, entity.UserPatch{Nickname: req.Nickname, Address: req.Address})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toMyProfileResponse(u))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), entity.UserDraft{
		Email:    req.Email,
		Nickname: req.Nickname,
		Address:  req.Address,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

// Search queries indexed ACTIVE users by email or nickname.
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	docs, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", map[string]string{"id": "must be a number"})
		return 0, false
	}
	return id, true
}
