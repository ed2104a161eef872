package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/bookmycut/booking-server-go/internal/booking"
	"github.com/bookmycut/booking-server-go/internal/database"
	"github.com/bookmycut/booking-server-go/internal/model"
	"github.com/bookmycut/booking-server-go/internal/repository"
)

// AdminHandler exposes the back-office API for the service catalog,
// customers, and booking status management.
type AdminHandler struct {
	db        *database.DB
	customers repository.CustomerRepository
	services  repository.ServiceRepository
	bookings  repository.BookingRepository
}

func NewAdminHandler(
	db *database.DB,
	customers repository.CustomerRepository,
	services repository.ServiceRepository,
	bookings repository.BookingRepository,
) *AdminHandler {
	return &AdminHandler{
		db:        db,
		customers: customers,
		services:  services,
		bookings:  bookings,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/services", h.ListServices)
	r.Post("/services", h.CreateService)
	r.Get("/customers", h.ListCustomers)
	r.Get("/customers/{phone}/bookings", h.ListCustomerBookings)
	r.Get("/bookings", h.ListBookings)
	r.Get("/bookings/{reference}", h.GetBooking)
	r.Patch("/bookings/{id}", h.UpdateBooking)
	return r
}

func (h *AdminHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list services")
		writeError(w, http.StatusInternalServerError, "Failed to list services")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *AdminHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var params model.CreateServiceParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if params.ServiceID == "" || params.Category == "" || params.Title == "" {
		writeError(w, http.StatusBadRequest, "serviceId, category and title are required")
		return
	}

	service, err := h.services.Create(r.Context(), params)
	if err != nil {
		log.Error().Err(err).Str("serviceId", params.ServiceID).Msg("failed to create service")
		writeError(w, http.StatusInternalServerError, "Failed to create service")
		return
	}
	writeJSON(w, http.StatusCreated, service)
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list customers")
		writeError(w, http.StatusInternalServerError, "Failed to list customers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (h *AdminHandler) ListCustomerBookings(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	customer, err := h.customers.FindByPhone(r.Context(), phone)
	if err != nil {
		log.Error().Err(err).Msg("failed to find customer")
		writeError(w, http.StatusInternalServerError, "Failed to find customer")
		return
	}
	if customer == nil {
		writeError(w, http.StatusNotFound, "Customer not found")
		return
	}

	bookings, err := h.bookings.ListByCustomer(r.Context(), customer.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list customer bookings")
		writeError(w, http.StatusInternalServerError, "Failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, booking.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = &parsed
	}

	bookings, err := h.bookings.List(r.Context(), date)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings")
		writeError(w, http.StatusInternalServerError, "Failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (h *AdminHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	found, err := h.bookings.FindByReference(r.Context(), reference)
	if err != nil {
		log.Error().Err(err).Msg("failed to find booking")
		writeError(w, http.StatusInternalServerError, "Failed to find booking")
		return
	}
	if found == nil {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	writeJSON(w, http.StatusOK, found)
}

type updateBookingRequest struct {
	Status        model.BookingStatus `json:"status"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
}

// UpdateBooking changes a booking's status and payment status. The first
// transition to PAID awards the service's loyalty points to the customer,
// exactly once, in the same transaction as the status write.
func (h *AdminHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() || !req.PaymentStatus.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status or paymentStatus")
		return
	}

	current, err := h.bookings.FindByID(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("failed to find booking")
		writeError(w, http.StatusInternalServerError, "Failed to find booking")
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}

	awardPoints := 0
	if req.PaymentStatus == model.PaymentStatusPaid && !current.LoyaltyPointsAwarded {
		service, err := h.services.FindByID(r.Context(), current.ServiceID)
		if err != nil {
			log.Error().Err(err).Msg("failed to load service for loyalty award")
			writeError(w, http.StatusInternalServerError, "Failed to update booking")
			return
		}
		if service != nil {
			awardPoints = service.LoyaltyPoints
		}
	}

	err = h.db.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		txBookings := h.bookings.WithTx(tx)
		if err := txBookings.UpdateStatus(r.Context(), id, req.Status, req.PaymentStatus); err != nil {
			return err
		}
		if awardPoints > 0 {
			if err := txBookings.MarkLoyaltyPointsAwarded(r.Context(), id); err != nil {
				return err
			}
			return h.customers.WithTx(tx).AddLoyaltyPoints(
				r.Context(), current.CustomerID, awardPoints, current.AppointmentDate)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("bookingId", id).Msg("failed to update booking")
		writeError(w, http.StatusInternalServerError, "Failed to update booking")
		return
	}

	if awardPoints > 0 {
		log.Info().
			Str("bookingReference", current.BookingReference).
			Int("points", awardPoints).
			Msg("loyalty points awarded")
	}

	updated, err := h.bookings.FindByID(r.Context(), id)
	if err != nil || updated == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
