package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/cmd"
	"github.com/courtwatch/courtwatch/db"
	"github.com/courtwatch/courtwatch/network/httputil"
	"github.com/courtwatch/courtwatch/scraper/queue"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

const defaultHistoryLimit = 50

// CourtsResponse is the live or degraded board view. Stale marks a snapshot
// fallback served because no tick has completed recently.
type CourtsResponse struct {
	Courts    []*board.Court `json:"courts"`
	ScrapedAt time.Time      `json:"scrapedAt"`
	Stale     bool           `json:"stale"`
}

// QueuesResponse carries the per-court pending queues, ordered by court.
type QueuesResponse struct {
	Queues []*queue.Queue `json:"queues"`
	Stale  bool           `json:"stale"`
}

// CaseHistoryResponse lists a case's board sightings, newest first.
type CaseHistoryResponse struct {
	CaseNumber string               `json:"caseNumber"`
	History    []*board.CaseHistory `json:"history"`
}

// RegisterDeviceRequest subscribes a device token for push alerts.
type RegisterDeviceRequest struct {
	DeviceID  string `json:"deviceId"`
	PushToken string `json:"pushToken"`
}

// CreateWatchlistRequest starts watching a case for a registered device.
// Settings defaults to every alert type enabled when omitted.
type CreateWatchlistRequest struct {
	DeviceID   string                      `json:"deviceId"`
	CaseNumber string                      `json:"caseNumber"`
	Settings   *board.NotificationSettings `json:"settings,omitempty"`
}

// WatchlistsResponse lists a device's watchlists, active and completed.
type WatchlistsResponse struct {
	Watchlists []*board.Watchlist `json:"watchlists"`
}

// NotificationsResponse lists a device's delivery log, oldest first.
type NotificationsResponse struct {
	Notifications []*board.NotificationLog `json:"notifications"`
}

// Courts returns the live board, falling back to the latest durable snapshot
// when the tick cache has gone cold.
func (s *Service) Courts(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.Courts")
	defer span.End()

	if courts, ok := s.cfg.Board.CurrentCourts(); ok {
		httputil.WriteJson(w, &CourtsResponse{Courts: courts, ScrapedAt: scrapedAt(courts)})
		return
	}
	snap, err := s.cfg.Database.LatestSnapshot(ctx)
	if err != nil {
		httputil.HandleError(w, "Could not read board snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if snap == nil {
		httputil.HandleError(w, "Board cache warming, no data yet", http.StatusServiceUnavailable)
		return
	}
	httputil.WriteJson(w, &CourtsResponse{Courts: snap.Courts, ScrapedAt: snap.TakenAt, Stale: true})
}

// Queues returns the per-court pending queues. A cold cache degrades to
// queues rebuilt from the latest snapshot.
func (s *Service) Queues(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.Queues")
	defer span.End()

	if queues, ok := s.cfg.Board.Queues(); ok {
		httputil.WriteJson(w, &QueuesResponse{Queues: queues.Sorted()})
		return
	}
	snap, err := s.cfg.Database.LatestSnapshot(ctx)
	if err != nil {
		httputil.HandleError(w, "Could not read board snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if snap == nil {
		httputil.HandleError(w, "Board cache warming, no data yet", http.StatusServiceUnavailable)
		return
	}
	httputil.WriteJson(w, &QueuesResponse{Queues: queue.Build(snap.Courts).Sorted(), Stale: true})
}

// CaseHistory returns a case's recorded board sightings.
func (s *Service) CaseHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.CaseHistory")
	defer span.End()

	caseNumber := mux.Vars(r)["caseNumber"]
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.HandleError(w, "Invalid limit: "+raw, http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if max := cmd.Get().MaxHistoryPageSize; limit > max {
		limit = max
	}
	history, err := s.cfg.Database.CaseHistories(ctx, caseNumber, limit)
	if err != nil {
		httputil.HandleError(w, "Could not read case history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJson(w, &CaseHistoryResponse{CaseNumber: caseNumber, History: history})
}

// CaseStatistics returns a case's accumulated appearance statistics.
func (s *Service) CaseStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.CaseStatistics")
	defer span.End()

	caseNumber := mux.Vars(r)["caseNumber"]
	stats, err := s.cfg.Database.CaseStatistics(ctx, caseNumber)
	if err != nil {
		httputil.HandleError(w, "Could not read case statistics: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		httputil.HandleError(w, "Case has never appeared on the board", http.StatusNotFound)
		return
	}
	httputil.WriteJson(w, stats)
}

// RegisterDevice saves or refreshes a device's push token. Registration is
// idempotent: re-posting the same device overwrites its token.
func (s *Service) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.RegisterDevice")
	defer span.End()

	var req RegisterDeviceRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	switch {
	case err == io.EOF:
		httputil.HandleError(w, "No data submitted", http.StatusBadRequest)
		return
	case err != nil:
		httputil.HandleError(w, "Could not decode request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DeviceID == "" || req.PushToken == "" {
		httputil.HandleError(w, "deviceId and pushToken are required", http.StatusBadRequest)
		return
	}

	device := &board.Device{
		DeviceID:     req.DeviceID,
		PushToken:    req.PushToken,
		Active:       true,
		RegisteredAt: time.Now(),
	}
	if err := s.cfg.Database.SaveDevice(ctx, device); err != nil {
		httputil.HandleError(w, "Could not save device: "+err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJson(w, device)
}

// CreateWatchlist subscribes a registered device to a case. One active
// watchlist per (device, case) pair; duplicates answer 409.
func (s *Service) CreateWatchlist(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.CreateWatchlist")
	defer span.End()

	var req CreateWatchlistRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	switch {
	case err == io.EOF:
		httputil.HandleError(w, "No data submitted", http.StatusBadRequest)
		return
	case err != nil:
		httputil.HandleError(w, "Could not decode request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DeviceID == "" || req.CaseNumber == "" {
		httputil.HandleError(w, "deviceId and caseNumber are required", http.StatusBadRequest)
		return
	}
	device, err := s.cfg.Database.Device(ctx, req.DeviceID)
	if err != nil {
		httputil.HandleError(w, "Could not look up device: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if device == nil {
		httputil.HandleError(w, "Device is not registered", http.StatusBadRequest)
		return
	}

	settings := board.AllNotifications()
	if req.Settings != nil {
		settings = *req.Settings
	}
	watchlist := &board.Watchlist{
		DeviceID:   req.DeviceID,
		CaseNumber: req.CaseNumber,
		Settings:   settings,
		CreatedAt:  time.Now(),
	}
	if _, err := s.cfg.Database.CreateWatchlist(ctx, watchlist); err != nil {
		if errors.Is(err, db.ErrAlreadyWatching) {
			httputil.HandleError(w, "Device already watches this case", http.StatusConflict)
			return
		}
		httputil.HandleError(w, "Could not create watchlist: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.cfg.Database.AdjustWatchCount(ctx, req.CaseNumber, 1); err != nil {
		log.WithError(err).WithField("caseNumber", req.CaseNumber).Error("Could not bump watch count")
	}
	httputil.WriteJson(w, watchlist)
}

// DeleteWatchlist stops watching. Deactivation keeps the record for the
// device's history but frees the (device, case) slot.
func (s *Service) DeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.DeleteWatchlist")
	defer span.End()

	id := mux.Vars(r)["id"]
	watchlist, err := s.cfg.Database.Watchlist(ctx, id)
	if err != nil {
		httputil.HandleError(w, "Could not look up watchlist: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if watchlist == nil || !watchlist.Active {
		httputil.HandleError(w, "No active watchlist with this id", http.StatusNotFound)
		return
	}
	if err := s.cfg.Database.DeactivateWatchlist(ctx, id); err != nil {
		httputil.HandleError(w, "Could not deactivate watchlist: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.cfg.Database.AdjustWatchCount(ctx, watchlist.CaseNumber, -1); err != nil {
		log.WithError(err).WithField("caseNumber", watchlist.CaseNumber).Error("Could not lower watch count")
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeviceWatchlists lists every watchlist a device has created.
func (s *Service) DeviceWatchlists(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.DeviceWatchlists")
	defer span.End()

	deviceID := mux.Vars(r)["deviceId"]
	watchlists, err := s.cfg.Database.WatchlistsByDevice(ctx, deviceID)
	if err != nil {
		httputil.HandleError(w, "Could not read watchlists: "+err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJson(w, &WatchlistsResponse{Watchlists: watchlists})
}

// DeviceNotifications lists a device's alert delivery log.
func (s *Service) DeviceNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "api.DeviceNotifications")
	defer span.End()

	deviceID := mux.Vars(r)["deviceId"]
	notifications, err := s.cfg.Database.NotificationsByDevice(ctx, deviceID)
	if err != nil {
		httputil.HandleError(w, "Could not read notification log: "+err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJson(w, &NotificationsResponse{Notifications: notifications})
}

// scrapedAt pulls the tick timestamp off the cached board; every court in
// one tick carries the same capture time.
func scrapedAt(courts []*board.Court) time.Time {
	if len(courts) == 0 {
		return time.Time{}
	}
	return courts[0].ScrapedAt
}
