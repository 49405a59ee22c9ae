package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/talent-market/internal/chat"
	"github.com/suPer8Hu/talent-market/internal/common"
	"github.com/suPer8Hu/talent-market/internal/config"
	"github.com/suPer8Hu/talent-market/internal/directory"
	"github.com/suPer8Hu/talent-market/internal/events"
	"github.com/suPer8Hu/talent-market/internal/geo"
	"github.com/suPer8Hu/talent-market/internal/logging"
	"github.com/suPer8Hu/talent-market/internal/provider"
	"github.com/suPer8Hu/talent-market/internal/request"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	Cfg config.Config
	Log *zap.Logger

	Providers *provider.Service
	Directory *directory.Service
	Requests  *request.Service
	Chat      *chat.Service
	Events    events.Publisher

	// LocatorFor resolves the caller's position when browse asks for live location
	// without sending a coordinate.
	LocatorFor func(clientIP string) geo.Locator
}

func NewHandler(db *gorm.DB, cfg config.Config, store chat.ChatStore, pub events.Publisher, log *zap.Logger) *Handler {
	log = logging.OrNop(log)
	if pub == nil {
		pub = events.Nop{}
	}
	provRepo := provider.NewRepo(db)
	provSvc := provider.NewService(provRepo)
	reqSvc := request.NewService(request.NewRepo(db), provRepo, pub, log)

	return &Handler{
		DB:        db,
		Cfg:       cfg,
		Log:       log,
		Providers: provSvc,
		Directory: directory.NewService(provRepo, log),
		Requests:  reqSvc,
		Chat:      chat.NewService(store, reqSvc, log),
		Events:    pub,
		LocatorFor: func(ip string) geo.Locator {
			return geo.NewIPLocator(cfg.GeoLookupURL, ip)
		},
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid "+name)
		return 0, false
	}
	return id, true
}

// fail maps a domain error onto the envelope. Unknown errors are logged and reported
// as 500 without detail.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, provider.ErrInvalidProfile),
		errors.Is(err, provider.ErrInvalidCard),
		errors.Is(err, provider.ErrInvalidReview),
		errors.Is(err, request.ErrInvalidStatus),
		errors.Is(err, chat.ErrEmptyMessage):
		common.Fail(c, http.StatusBadRequest, 10002, err.Error())
	case errors.Is(err, request.ErrUnauthenticated):
		common.Fail(c, http.StatusUnauthorized, 40101, "login required")
	case errors.Is(err, provider.ErrForbidden),
		errors.Is(err, request.ErrForbidden),
		errors.Is(err, chat.ErrForbidden):
		common.Fail(c, http.StatusForbidden, 40301, "forbidden")
	case errors.Is(err, provider.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "provider not found")
	case errors.Is(err, provider.ErrCardNotFound):
		common.Fail(c, http.StatusNotFound, 40402, "card not found")
	case errors.Is(err, request.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40403, "request not found")
	case errors.Is(err, request.ErrDuplicateActive):
		common.Fail(c, http.StatusConflict, 40901, "you already have an active request with this provider")
	case errors.Is(err, request.ErrNotPending):
		common.Fail(c, http.StatusConflict, 40902, "request already decided")
	case errors.Is(err, chat.ErrNotAccepted):
		common.Fail(c, http.StatusConflict, 40903, "chat opens once the request is accepted")
	default:
		h.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}
