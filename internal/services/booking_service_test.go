package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourvista/tours-backend/internal/database"
	"github.com/tourvista/tours-backend/internal/models"
	"github.com/tourvista/tours-backend/pkg/gateway"
)

type fakeBookingStore struct {
	bookings map[uuid.UUID]*models.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (f *fakeBookingStore) Create(q database.Queryer, booking *models.Booking) error {
	booking.CreatedAt = time.Now()
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingStore) GetByID(q database.Queryer, bookingID uuid.UUID) (*models.Booking, error) {
	booking, ok := f.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingStore) MarkConfirmed(q database.Queryer, bookingID uuid.UUID) (bool, error) {
	booking, ok := f.bookings[bookingID]
	if !ok || booking.BookingStatus != models.BookingStatusPending {
		return false, nil
	}
	booking.BookingStatus = models.BookingStatusConfirmed
	booking.PaymentStatus = models.PaymentStatusCompleted
	now := time.Now()
	booking.ConfirmedAt = &now
	return true, nil
}

func (f *fakeBookingStore) MarkPaymentFailed(bookingID uuid.UUID) error {
	if booking, ok := f.bookings[bookingID]; ok {
		booking.PaymentStatus = models.PaymentStatusFailed
	}
	return nil
}

func (f *fakeBookingStore) MarkCancelled(q database.Queryer, bookingID uuid.UUID, reason *string, refundAmount float64, paymentStatus models.PaymentStatus) (bool, error) {
	booking, ok := f.bookings[bookingID]
	if !ok {
		return false, nil
	}
	switch booking.BookingStatus {
	case models.BookingStatusPending, models.BookingStatusConfirmed:
	default:
		return false, nil
	}
	booking.BookingStatus = models.BookingStatusCancelled
	booking.CancellationReason = reason
	booking.RefundAmount = &refundAmount
	booking.PaymentStatus = paymentStatus
	now := time.Now()
	booking.CancelledAt = &now
	return true, nil
}

func (f *fakeBookingStore) MarkRefunded(q database.Queryer, bookingID uuid.UUID) (bool, error) {
	booking, ok := f.bookings[bookingID]
	if !ok || booking.BookingStatus != models.BookingStatusConfirmed {
		return false, nil
	}
	booking.BookingStatus = models.BookingStatusRefunded
	booking.PaymentStatus = models.PaymentStatusRefunded
	return true, nil
}

type fakePaymentStore struct {
	payments map[uuid.UUID]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[uuid.UUID]*models.Payment)}
}

func (f *fakePaymentStore) Create(payment *models.Payment) error {
	payment.CreatedAt = time.Now()
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakePaymentStore) GetByTrackingID(trackingID string) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.TrackingID == trackingID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) GetLatestForBooking(bookingID uuid.UUID) (*models.Payment, error) {
	var latest *models.Payment
	for _, p := range f.payments {
		if p.BookingID != bookingID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (f *fakePaymentStore) MarkCompleted(paymentID uuid.UUID, confirmationCode string) error {
	p, ok := f.payments[paymentID]
	if !ok {
		return nil
	}
	if p.Status == models.PaymentStatusCompleted || p.Status == models.PaymentStatusRefunded {
		return nil
	}
	p.Status = models.PaymentStatusCompleted
	p.ConfirmationCode = &confirmationCode
	now := time.Now()
	p.CompletedAt = &now
	return nil
}

func (f *fakePaymentStore) MarkFailed(paymentID uuid.UUID) error {
	if p, ok := f.payments[paymentID]; ok {
		p.Status = models.PaymentStatusFailed
	}
	return nil
}

func (f *fakePaymentStore) MarkRefunded(paymentID uuid.UUID) error {
	if p, ok := f.payments[paymentID]; ok {
		p.Status = models.PaymentStatusRefunded
	}
	return nil
}

func (f *fakePaymentStore) SumCompletedForBooking(q database.Queryer, bookingID uuid.UUID) (float64, error) {
	var total float64
	for _, p := range f.payments {
		if p.BookingID == bookingID && p.Status == models.PaymentStatusCompleted {
			total += p.Amount
		}
	}
	return total, nil
}

type earningKey struct {
	bookingID uuid.UUID
	entryType models.AgentEarningType
}

type fakeEarningsStore struct {
	entries map[earningKey]*models.AgentEarning
}

func newFakeEarningsStore() *fakeEarningsStore {
	return &fakeEarningsStore{entries: make(map[earningKey]*models.AgentEarning)}
}

func (f *fakeEarningsStore) CreateIfAbsent(q database.Queryer, entry *models.AgentEarning) (bool, error) {
	key := earningKey{entry.BookingID, entry.EntryType}
	if _, exists := f.entries[key]; exists {
		return false, nil
	}
	f.entries[key] = entry
	return true, nil
}

type fakeTourSource struct {
	tours   map[uuid.UUID]*models.Tour
	configs map[uuid.UUID]*models.PricingConfig
}

func newFakeTourSource(tours ...*models.Tour) *fakeTourSource {
	src := &fakeTourSource{
		tours:   make(map[uuid.UUID]*models.Tour),
		configs: make(map[uuid.UUID]*models.PricingConfig),
	}
	for _, tour := range tours {
		src.tours[tour.ID] = tour
	}
	return src
}

func (f *fakeTourSource) GetByID(tourID uuid.UUID) (*models.Tour, error) {
	return f.tours[tourID], nil
}

func (f *fakeTourSource) GetPricingConfig(tourID uuid.UUID) (*models.PricingConfig, error) {
	if cfg, ok := f.configs[tourID]; ok {
		return cfg, nil
	}
	return testPricingConfig(tourID), nil
}

func (f *fakeTourSource) GetAccommodations(tourID uuid.UUID, ids []string) ([]models.AccommodationOption, error) {
	return nil, nil
}

func (f *fakeTourSource) GetActivityAddons(tourID uuid.UUID, ids []string) ([]models.ActivityAddon, error) {
	return nil, nil
}

type fakeGateway struct {
	status *gateway.TransactionStatus
	err    error
	calls  int
}

func (f *fakeGateway) GetTransactionStatus(trackingID string) (*gateway.TransactionStatus, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

type fakeNotifier struct {
	reserved  int
	confirmed int
	cancelled int
}

func (f *fakeNotifier) BookingReserved(*models.Booking)           { f.reserved++ }
func (f *fakeNotifier) BookingConfirmed(*models.Booking)          { f.confirmed++ }
func (f *fakeNotifier) BookingCancelled(*models.Booking, float64) { f.cancelled++ }

type bookingFixture struct {
	svc      *BookingService
	bookings *fakeBookingStore
	holds    *fakeHoldStore
	payments *fakePaymentStore
	earnings *fakeEarningsStore
	tours    *fakeTourSource
	gateway  *fakeGateway
	notifier *fakeNotifier
}

func newBookingFixture(tour *models.Tour) *bookingFixture {
	f := &bookingFixture{
		bookings: newFakeBookingStore(),
		holds:    newFakeHoldStore(),
		payments: newFakePaymentStore(),
		earnings: newFakeEarningsStore(),
		tours:    newFakeTourSource(tour),
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewBookingService(
		&fakeDB{}, f.bookings, f.holds, f.payments, f.earnings,
		f.tours, NewPricingService(), f.gateway, f.notifier, quietLogger(),
	)
	return f
}

func (f *bookingFixture) addActiveHold(tour *models.Tour, start, createdAt time.Time, adults int) *models.Hold {
	hold := &models.Hold{
		ID:        uuid.New(),
		TourID:    tour.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, tour.DurationDays),
		Spots:     adults,
		Adults:    adults,
		Status:    models.HoldStatusActive,
		ExpiresAt: createdAt.Add(15 * time.Minute),
		CreatedAt: createdAt,
	}
	f.holds.holds[hold.ID] = hold
	return hold
}

func reserveReq() *models.ReserveRequest {
	return &models.ReserveRequest{ContactName: "Jordan Blake"}
}

func TestReserve_PricesFromHoldCreationTime(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)

	cfg := testPricingConfig(tour.ID)
	cfg.EarlyBirdDays = 30
	cfg.EarlyBirdPercent = 10
	f.tours.configs[tour.ID] = cfg

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	quotedAt := start.AddDate(0, 0, -45)
	hold := f.addActiveHold(tour, start, quotedAt, 2)
	hold.ExpiresAt = start // keep the hold live at reserve time

	// The customer reserves much later; the early-bird price must survive
	// because the pricing instant is the hold's creation, not now.
	now := start.AddDate(0, 0, -5)
	f.svc.now = func() time.Time { return now }

	booking, err := f.svc.Reserve(hold.ID, reserveReq())
	require.NoError(t, err)

	// 2 x 500 = 1000, minus 10% early-bird
	assert.Equal(t, 100.0, booking.DiscountAmount)
	assert.Equal(t, 900.0, booking.TotalAmount)
	assert.Equal(t, 900.0, booking.AgentEarnings)
	assert.Equal(t, models.BookingStatusPending, booking.BookingStatus)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)

	// Deadline pulled forward to three days before departure
	require.NotNil(t, booking.PaymentDueAt)
	assert.Equal(t, start.AddDate(0, 0, -3), *booking.PaymentDueAt)

	assert.Equal(t, models.HoldStatusConsumed, f.holds.holds[hold.ID].Status)
	assert.Equal(t, 1, f.notifier.reserved)
}

func TestReserve_DeadlineSevenDaysOutWhenDepartureIsFar(t *testing.T) {
	tour := testTour(100, 1, 10)
	f := newBookingFixture(tour)

	start := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	hold := f.addActiveHold(tour, start, now, 1)
	f.svc.now = func() time.Time { return now }

	booking, err := f.svc.Reserve(hold.ID, reserveReq())
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 7), *booking.PaymentDueAt)
}

func TestReserve_ExpiredHold(t *testing.T) {
	tour := testTour(100, 1, 10)
	f := newBookingFixture(tour)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	hold := f.addActiveHold(tour, start, createdAt, 1)

	f.svc.now = func() time.Time { return createdAt.Add(time.Hour) }

	_, err := f.svc.Reserve(hold.ID, reserveReq())
	assert.ErrorIs(t, err, ErrHoldExpired)
	assert.Equal(t, models.HoldStatusActive, f.holds.holds[hold.ID].Status)
	assert.Empty(t, f.bookings.bookings)
}

func TestReserve_UnknownHold(t *testing.T) {
	f := newBookingFixture(testTour(100, 1, 10))

	_, err := f.svc.Reserve(uuid.New(), reserveReq())
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func (f *bookingFixture) seedPendingBooking(tour *models.Tour, total float64, start time.Time) (*models.Booking, *models.Payment) {
	booking := &models.Booking{
		ID:            uuid.New(),
		TourID:        tour.ID,
		AgentID:       tour.AgentID,
		ContactName:   "Jordan Blake",
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, tour.DurationDays),
		Adults:        2,
		Currency:      "USD",
		TotalAmount:   total,
		AgentEarnings: total, // zero service fee in these fixtures
		PaymentStatus: models.PaymentStatusPending,
		BookingStatus: models.BookingStatusPending,
	}
	f.bookings.bookings[booking.ID] = booking

	payment := &models.Payment{
		ID:         uuid.New(),
		BookingID:  booking.ID,
		Amount:     total,
		Currency:   "USD",
		TrackingID: "trk-" + booking.ID.String()[:8],
		Status:     models.PaymentStatusPending,
	}
	f.payments.payments[payment.ID] = payment
	return booking, payment
}

func TestReconcile_CompletedIsIdempotent(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	booking, payment := f.seedPendingBooking(tour, 1000, start)

	f.gateway.status = &gateway.TransactionStatus{
		TrackingID:       payment.TrackingID,
		StatusCode:       gateway.StatusCompleted,
		ConfirmationCode: "CONF-001",
		Amount:           1000,
		Currency:         "USD",
	}

	// Webhook delivery and a client poll race each other
	for i := 0; i < 3; i++ {
		resp, err := f.svc.Reconcile(payment.TrackingID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, resp.BookingStatus)
		assert.Equal(t, models.PaymentStatusCompleted, resp.PaymentStatus)
	}

	// Exactly one ledger credit despite the retries
	require.Len(t, f.earnings.entries, 1)
	credit := f.earnings.entries[earningKey{booking.ID, models.EarningTypeBooking}]
	require.NotNil(t, credit)
	assert.Equal(t, 1000.0, credit.Amount)
	assert.Equal(t, tour.AgentID, credit.AgentID)

	assert.Equal(t, 1, f.notifier.confirmed)
	assert.Equal(t, models.PaymentStatusCompleted, f.payments.payments[payment.ID].Status)
}

func TestReconcile_CompletedAfterCancelDoesNotCreditAgent(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)
	start := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	booking, payment := f.seedPendingBooking(tour, 1000, start)

	// Customer cancels while the charge is still in flight
	f.svc.now = func() time.Time { return start.AddDate(0, 0, -30) }
	_, err := f.svc.Cancel(booking.ID, strPtr("changed plans"))
	require.NoError(t, err)

	f.gateway.status = &gateway.TransactionStatus{
		TrackingID:       payment.TrackingID,
		StatusCode:       gateway.StatusCompleted,
		ConfirmationCode: "CONF-009",
		Amount:           1000,
		Currency:         "USD",
	}

	resp, err := f.svc.Reconcile(payment.TrackingID)
	require.NoError(t, err)

	// The cancellation stands and the agent earns nothing from it
	assert.Equal(t, models.BookingStatusCancelled, resp.BookingStatus)
	assert.Equal(t, models.BookingStatusCancelled, f.bookings.bookings[booking.ID].BookingStatus)
	assert.Empty(t, f.earnings.entries)
	assert.Equal(t, 0, f.notifier.confirmed)

	// The captured money is still on record, flagged for refund
	assert.Equal(t, models.PaymentStatusCompleted, f.payments.payments[payment.ID].Status)
}

func TestReconcile_FailedKeepsBookingPending(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)
	booking, payment := f.seedPendingBooking(tour, 1000, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	f.gateway.status = &gateway.TransactionStatus{
		TrackingID: payment.TrackingID,
		StatusCode: gateway.StatusFailed,
	}

	resp, err := f.svc.Reconcile(payment.TrackingID)
	require.NoError(t, err)

	// Failure is not terminal: the customer may retry
	assert.Equal(t, models.BookingStatusPending, resp.BookingStatus)
	assert.Equal(t, models.PaymentStatusFailed, resp.PaymentStatus)
	assert.Equal(t, models.PaymentStatusFailed, f.payments.payments[payment.ID].Status)
	assert.Equal(t, models.BookingStatusPending, f.bookings.bookings[booking.ID].BookingStatus)
	assert.Empty(t, f.earnings.entries)
}

func TestReconcile_ReversedClawsBackEarnings(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)
	booking, payment := f.seedPendingBooking(tour, 1000, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	// Settle the payment first
	f.gateway.status = &gateway.TransactionStatus{
		TrackingID: payment.TrackingID,
		StatusCode: gateway.StatusCompleted,
	}
	_, err := f.svc.Reconcile(payment.TrackingID)
	require.NoError(t, err)

	// Then the gateway reverses the charge
	f.gateway.status = &gateway.TransactionStatus{
		TrackingID: payment.TrackingID,
		StatusCode: gateway.StatusReversed,
	}
	resp, err := f.svc.Reconcile(payment.TrackingID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusRefunded, resp.BookingStatus)
	clawback := f.earnings.entries[earningKey{booking.ID, models.EarningTypeRefund}]
	require.NotNil(t, clawback)
	assert.Equal(t, -1000.0, clawback.Amount)
}

func TestReconcile_InvalidTrackingIsNoOp(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)
	_, payment := f.seedPendingBooking(tour, 1000, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	f.gateway.status = &gateway.TransactionStatus{StatusCode: gateway.StatusInvalid}

	resp, err := f.svc.Reconcile(payment.TrackingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, resp.BookingStatus)
	assert.Equal(t, models.PaymentStatusPending, resp.PaymentStatus)
}

func TestReconcile_GatewayDownServesLocalState(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)
	_, payment := f.seedPendingBooking(tour, 1000, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	f.gateway.err = errors.New("connection refused")

	resp, err := f.svc.Reconcile(payment.TrackingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, resp.BookingStatus)
}

func TestGetPaymentStatus_PollsGatewayForUnsettledPayment(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)
	booking, payment := f.seedPendingBooking(tour, 1000, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	f.gateway.status = &gateway.TransactionStatus{
		TrackingID: payment.TrackingID,
		StatusCode: gateway.StatusCompleted,
	}

	resp, err := f.svc.GetPaymentStatus(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, models.BookingStatusConfirmed, resp.BookingStatus)

	// Settled payments skip the gateway entirely
	f.gateway.calls = 0
	resp, err = f.svc.GetPaymentStatus(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gateway.calls)
	assert.Equal(t, models.BookingStatusConfirmed, resp.BookingStatus)
}

func confirmAndPay(t *testing.T, f *bookingFixture, payment *models.Payment) {
	t.Helper()
	f.gateway.status = &gateway.TransactionStatus{
		TrackingID: payment.TrackingID,
		StatusCode: gateway.StatusCompleted,
	}
	_, err := f.svc.Reconcile(payment.TrackingID)
	require.NoError(t, err)
}

func TestCancel_RefundTiers(t *testing.T) {
	cases := []struct {
		name          string
		daysBefore    int
		wantPercent   float64
		wantRefund    float64
		wantClawback  float64
		wantPayStatus models.PaymentStatus
	}{
		{"free cancellation window", 20, 100, 1000, 1000, models.PaymentStatusRefunded},
		{"half refund", 10, 50, 500, 500, models.PaymentStatusPartiallyRefunded},
		{"quarter refund", 5, 25, 250, 250, models.PaymentStatusPartiallyRefunded},
		{"no refund", 1, 0, 0, 0, models.PaymentStatusCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tour := testTour(500, 3, 10)
			tour.FreeCancellationDays = 14
			f := newBookingFixture(tour)

			start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
			booking, payment := f.seedPendingBooking(tour, 1000, start)
			confirmAndPay(t, f, payment)

			f.svc.now = func() time.Time { return start.AddDate(0, 0, -tc.daysBefore) }

			result, err := f.svc.Cancel(booking.ID, strPtr("change of plans"))
			require.NoError(t, err)

			assert.Equal(t, tc.wantPercent, result.RefundPercentage)
			assert.Equal(t, tc.wantRefund, result.RefundAmount)
			assert.Equal(t, tc.daysBefore, result.DaysUntilStart)
			assert.Equal(t, 14, result.FreeCancellationDays)

			stored := f.bookings.bookings[booking.ID]
			assert.Equal(t, models.BookingStatusCancelled, stored.BookingStatus)
			assert.Equal(t, tc.wantPayStatus, stored.PaymentStatus)
			require.NotNil(t, stored.RefundAmount)
			assert.Equal(t, tc.wantRefund, *stored.RefundAmount)

			clawback := f.earnings.entries[earningKey{booking.ID, models.EarningTypeRefund}]
			if tc.wantClawback > 0 {
				require.NotNil(t, clawback)
				assert.Equal(t, -tc.wantClawback, clawback.Amount)
			} else {
				assert.Nil(t, clawback)
			}

			assert.Equal(t, 1, f.notifier.cancelled)
		})
	}
}

func TestCancel_PendingUnpaidRefundsNothing(t *testing.T) {
	tour := testTour(500, 3, 10)
	tour.FreeCancellationDays = 14
	f := newBookingFixture(tour)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	booking, _ := f.seedPendingBooking(tour, 1000, start)

	f.svc.now = func() time.Time { return start.AddDate(0, 0, -30) }

	result, err := f.svc.Cancel(booking.ID, nil)
	require.NoError(t, err)

	// 100% of zero captured money is still zero
	assert.Equal(t, 100.0, result.RefundPercentage)
	assert.Equal(t, 0.0, result.RefundAmount)
	assert.Empty(t, f.earnings.entries)
}

func TestCancel_InvalidStates(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	booking, _ := f.seedPendingBooking(tour, 1000, start)
	f.svc.now = func() time.Time { return start.AddDate(0, 0, -30) }

	_, err := f.svc.Cancel(booking.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.Cancel(booking.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	completed, _ := f.seedPendingBooking(tour, 1000, start)
	f.bookings.bookings[completed.ID].BookingStatus = models.BookingStatusCompleted
	_, err = f.svc.Cancel(completed.ID, nil)
	assert.ErrorIs(t, err, ErrCannotCancelCompleted)

	_, err = f.svc.Cancel(uuid.New(), nil)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCreatePaymentAttempt(t *testing.T) {
	tour := testTour(500, 3, 10)
	f := newBookingFixture(tour)
	booking, _ := f.seedPendingBooking(tour, 1000, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	payment, err := f.svc.CreatePaymentAttempt(booking.ID, "trk-new", nil)
	require.NoError(t, err)
	assert.Equal(t, booking.TotalAmount, payment.Amount)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)

	// Paid bookings reject further attempts
	f.bookings.bookings[booking.ID].PaymentStatus = models.PaymentStatusCompleted
	_, err = f.svc.CreatePaymentAttempt(booking.ID, "trk-extra", nil)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestDaysUntilStart(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, daysUntilStart(start.AddDate(0, 0, -10), start))
	// Partial days round up in the customer's favor
	assert.Equal(t, 10, daysUntilStart(start.AddDate(0, 0, -10).Add(6*time.Hour), start))
	assert.Equal(t, 0, daysUntilStart(start, start))
	assert.Equal(t, 0, daysUntilStart(start.AddDate(0, 0, 2), start))
}

func TestRefundPercent(t *testing.T) {
	assert.Equal(t, 100.0, refundPercent(14, 14))
	assert.Equal(t, 100.0, refundPercent(30, 14))
	assert.Equal(t, 50.0, refundPercent(13, 14))
	assert.Equal(t, 50.0, refundPercent(7, 14))
	assert.Equal(t, 25.0, refundPercent(6, 14))
	assert.Equal(t, 25.0, refundPercent(3, 14))
	assert.Equal(t, 0.0, refundPercent(2, 14))
	assert.Equal(t, 0.0, refundPercent(0, 14))
}
