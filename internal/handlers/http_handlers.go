package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"campaign/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
)

const (
	sessionCookie = "campaign_session"
	sessionKeyCtx = "sessionKey"
	adminCtx      = "adminEmail"
)

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	campaign  *services.CampaignService
	catalog   *services.PrizeCatalog
	inventory *services.VoucherInventory
	reporter  *services.Reporter
	admin     *services.AdminService
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(
	campaign *services.CampaignService,
	catalog *services.PrizeCatalog,
	inventory *services.VoucherInventory,
	reporter *services.Reporter,
	admin *services.AdminService,
) (*HTTPHandler, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	return &HTTPHandler{
		campaign:  campaign,
		catalog:   catalog,
		inventory: inventory,
		reporter:  reporter,
		admin:     admin,
	}, nil
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.Use(h.SessionMiddleware())
	api.GET("/locations", h.ListLocations)
	api.GET("/prizes", h.ListPrizes)
	api.POST("/register", h.Register)
	api.POST("/play", h.Play)
	api.GET("/session", h.ShowSession)
	api.DELETE("/session", h.LeaveSession)

	router.POST("/admin/login", h.AdminLogin)
	admin := router.Group("/admin")
	admin.Use(h.AdminMiddleware())
	admin.GET("/summary", h.Summary)
	admin.GET("/export", h.ExportReportCSV)
	admin.POST("/vouchers", h.UploadVouchersCSV)
	admin.POST("/vouchers/:code/redeem", h.RedeemVoucher)
	admin.POST("/prizes/:id/stock", h.RestockPrize)
	admin.POST("/password", h.ChangePassword)
}

// SessionMiddleware makes sure every visitor carries a session key cookie.
func (h *HTTPHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(sessionCookie)
		if err != nil || key == "" {
			key = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, key, 0, "/", "", false, true)
		}
		c.Set(sessionKeyCtx, key)
		c.Next()
	}
}

// AdminMiddleware requires a bearer token issued by AdminLogin.
func (h *HTTPHandler) AdminMiddleware() gin.HandlerFunc {
	const bearer = "Bearer "
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}
		email, err := h.admin.Verify(header[len(bearer):])
		if err != nil {
			logger.Warningf("admin token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(adminCtx, email)
		c.Next()
	}
}

// respondError maps service errors to a status and a message the user or admin can act on.
func respondError(c *gin.Context, err error) {
	var (
		schemaErr *services.SchemaError
		rowErr    *services.RowFormatError
		dupErr    *services.DuplicateCodeError
	)
	switch {
	case errors.Is(err, services.ErrExhaustedCatalog):
		c.JSON(http.StatusConflict, gin.H{"error": "Sorry, all prizes have been given out.", "code": "out_of_prizes"})
	case errors.Is(err, services.ErrNoActiveSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please register before playing.", "code": "not_registered"})
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV format", "code": "schema", "missing": schemaErr.Missing, "detail": schemaErr.Error()})
	case errors.As(err, &rowErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV row", "code": "row_format", "row": rowErr.Row, "detail": rowErr.Error()})
	case errors.As(err, &dupErr):
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate voucher code", "code": "duplicate_code", "voucherCode": dupErr.Code})
	case errors.Is(err, services.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to upload", "code": "empty_batch"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher code not found", "code": "not_found"})
	case errors.Is(err, services.ErrAlreadyRedeemed):
		c.JSON(http.StatusConflict, gin.H{"error": "Voucher code already redeemed", "code": "already_redeemed"})
	case errors.Is(err, services.ErrPrizeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Prize not found", "code": "prize_not_found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password", "code": "invalid_credentials"})
	case errors.Is(err, services.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "weak_password"})
	default:
		logger.Errorf("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again."})
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListLocations returns the venues users can register at.
func (h *HTTPHandler) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locations": h.campaign.Locations()})
}

// ListPrizes returns the wheel segments with remaining stock.
func (h *HTTPHandler) ListPrizes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prizes": h.campaign.Prizes()})
}

// Register handles the registration form.
func (h *HTTPHandler) Register(c *gin.Context) {
	var form RegistrationForm
	if err := c.ShouldBind(&form); err != nil {
		if fields, ok := fieldErrors(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please check your information", "fields": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if form.Location == "" {
		form.Location = c.Query("location")
	}

	profile, err := h.campaign.Register(c.Request.Context(), c.GetString(sessionKeyCtx), services.Registration{
		Name:       form.Name,
		Email:      form.Email,
		Phone:      form.Phone,
		LocationID: form.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// Play spins the wheel once for the registered session.
func (h *HTTPHandler) Play(c *gin.Context) {
	entry, replay, err := h.campaign.Play(c.Request.Context(), c.GetString(sessionKeyCtx))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"award": entry, "replay": replay})
}

// ShowSession returns the current registration and its awards.
func (h *HTTPHandler) ShowSession(c *gin.Context) {
	session, ok, err := h.campaign.Current(c.Request.Context(), c.GetString(sessionKeyCtx))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// LeaveSession forgets the current registration.
func (h *HTTPHandler) LeaveSession(c *gin.Context) {
	if err := h.campaign.Leave(c.Request.Context(), c.GetString(sessionKeyCtx)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin exchanges the admin credentials for a bearer token.
func (h *HTTPHandler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.admin.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChangePassword replaces the admin password.
func (h *HTTPHandler) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.admin.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary returns the participation and voucher counts.
func (h *HTTPHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporter.Summarize())
}

// UploadVouchersCSV ingests a voucher batch; any bad row rejects the whole file.
func (h *HTTPHandler) UploadVouchersCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("vouchersCSV")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a CSV file to upload"})
		return
	}
	defer file.Close()

	batch, err := services.ParseVoucherCSV(file)
	if err != nil {
		respondError(c, err)
		return
	}
	created, err := h.inventory.Ingest(batch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"rows": len(batch.Rows), "created": created})
}

type redeemRequest struct {
	SessionID string `json:"sessionId"`
}

// RedeemVoucher marks one voucher code as used.
func (h *HTTPHandler) RedeemVoucher(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SessionID == "" {
		req.SessionID = c.GetString(adminCtx)
	}
	voucher, err := h.inventory.Redeem(c.Param("code"), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voucher": voucher})
}

type restockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// RestockPrize sets the remaining stock of one wheel segment.
func (h *HTTPHandler) RestockPrize(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.Restock(c.Param("id"), *req.Stock); err != nil {
		if errors.Is(err, services.ErrPrizeNotFound) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": h.catalog.Variants()})
}

// ExportReportCSV handles the request to download the campaign report as a CSV file.
func (h *HTTPHandler) ExportReportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=twix-campaign-report.csv")

	if err := services.WriteReportCSV(c.Writer, h.reporter.ReportRows()); err != nil {
		logger.Errorf("Error writing CSV report: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
	}
}
