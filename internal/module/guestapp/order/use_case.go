package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/internal/module/guestapp/customer"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/promotion"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/xendit"
	"github.com/mangogik/catalog-hotel/internal/pkg/session"
	"github.com/mangogik/catalog-hotel/internal/pkg/util"
	"github.com/mangogik/catalog-hotel/internal/pkg/webhook"
	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/pubsub"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

const orderCodeMaxAttempts = 3

type OrderUseCase interface {
	Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
	Checkout(ctx context.Context, req CheckoutRequest) (CheckoutResponse, error)
	GetManyOrder(ctx context.Context, req GetManyOrderRequest) (GetManyOrderResponse, PageMeta, error)
	OnPaymentNotification(ctx context.Context, event PaymentNotificationEvent) error
}

type orderUseCase struct {
	logger                   *logrus.Logger
	timeout                  time.Duration
	currency                 string
	successRedirectURL       string
	failureRedirectURL       string
	pricing                  *PricingCalculator
	customerRepository       customer.CustomerRepository
	promotionRepository      promotion.PromotionRepository
	orderRepository          OrderRepository
	itemRepository           ItemRepository
	promotionUsageRepository PromotionUsageRepository
	paymentRepository        PaymentRepository
	xenditRepository         xendit.XenditRepository
	publisher                pubsub.Publisher
	notifier                 webhook.Notifier
}

type OrderUseCaseProperty struct {
	Logger                   *logrus.Logger
	Timeout                  time.Duration
	Currency                 string
	SuccessRedirectURL       string
	FailureRedirectURL       string
	Pricing                  *PricingCalculator
	CustomerRepository       customer.CustomerRepository
	PromotionRepository      promotion.PromotionRepository
	OrderRepository          OrderRepository
	ItemRepository           ItemRepository
	PromotionUsageRepository PromotionUsageRepository
	PaymentRepository        PaymentRepository
	XenditRepository         xendit.XenditRepository
	Publisher                pubsub.Publisher
	Notifier                 webhook.Notifier
}

func NewOrderUseCase(props OrderUseCaseProperty) OrderUseCase {
	return &orderUseCase{
		logger:                   props.Logger,
		timeout:                  props.Timeout,
		currency:                 props.Currency,
		successRedirectURL:       props.SuccessRedirectURL,
		failureRedirectURL:       props.FailureRedirectURL,
		pricing:                  props.Pricing,
		customerRepository:       props.CustomerRepository,
		promotionRepository:      props.PromotionRepository,
		orderRepository:          props.OrderRepository,
		itemRepository:           props.ItemRepository,
		promotionUsageRepository: props.PromotionUsageRepository,
		paymentRepository:        props.PaymentRepository,
		xenditRepository:         props.XenditRepository,
		publisher:                props.Publisher,
		notifier:                 props.Notifier,
	}
}

// Preview implements OrderUseCase.
func (u *orderUseCase) Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	stay, err := session.GetStayFromCtx(ctx)
	if err != nil {
		return PreviewResponse{}, err
	}

	c, err := u.findCustomerOfStay(ctx, stay)
	if err != nil {
		return PreviewResponse{}, err
	}

	lines, err := u.pricing.ComputeLines(ctx, req.Items)
	if err != nil {
		return PreviewResponse{}, err
	}

	if len(lines) == 0 {
		return PreviewResponse{}, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, "no orderable items in the cart")
	}

	subtotal := sumLineTotals(lines)

	resp := PreviewResponse{
		Lines:      lines,
		Subtotal:   subtotal,
		GrandTotal: subtotal,
	}

	if req.PromotionID == nil {
		return resp, nil
	}

	p, err := u.promotionRepository.FindActiveByID(ctx, *req.PromotionID, nil)
	if err != nil {
		return PreviewResponse{}, err
	}

	snapshot := snapshotPromotion(p)

	eligibility := promotion.Evaluate(p, c, serviceIDsOf(lines), time.Now().UTC())
	if !eligibility.OK {
		resp.Promotion = &PromotionPreview{
			Eligible: false,
			Reason:   &eligibility.Reason,
		}

		return resp, nil
	}

	discount := promotion.ComputeDiscount(p, pricedLinesOf(lines), subtotal)

	resp.DiscountTotal = discount
	resp.GrandTotal = subtotal - discount
	resp.Promotion = &PromotionPreview{
		Eligible:  true,
		Promotion: &snapshot,
	}

	return resp, nil
}

// Checkout implements OrderUseCase.
func (u *orderUseCase) Checkout(ctx context.Context, req CheckoutRequest) (CheckoutResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	stay, err := session.GetStayFromCtx(ctx)
	if err != nil {
		return CheckoutResponse{}, err
	}

	c, err := u.findCustomerOfStay(ctx, stay)
	if err != nil {
		return CheckoutResponse{}, err
	}

	lines, err := u.pricing.ComputeLines(ctx, req.Items)
	if err != nil {
		return CheckoutResponse{}, err
	}

	if len(lines) == 0 {
		return CheckoutResponse{}, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, "no orderable items in the cart")
	}

	subtotal := sumLineTotals(lines)

	var appliedPromotion *promotion.Promotion
	var discount float64

	if req.PromotionID != nil {
		p, err := u.promotionRepository.FindActiveByID(ctx, *req.PromotionID, nil)
		if err != nil {
			return CheckoutResponse{}, err
		}

		eligibility := promotion.Evaluate(p, c, serviceIDsOf(lines), time.Now().UTC())
		if !eligibility.OK {
			return CheckoutResponse{}, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, fmt.Sprintf("promotion is not applicable: %s", eligibility.Reason))
		}

		discount = promotion.ComputeDiscount(p, pricedLinesOf(lines), subtotal)
		appliedPromotion = &p
	}

	grandTotal := subtotal - discount
	now := time.Now().UTC()

	o := Order{
		CustomerID:        c.ID,
		StayID:            stay.ID,
		OrderCode:         fmt.Sprintf("TMP-%s", uuid.NewString()),
		PaymentPreference: req.PaymentPreference,
		Status:            OrderStatusPending,
		Subtotal:          subtotal,
		DiscountTotal:     discount,
		GrandTotal:        grandTotal,
		Notes:             req.OrderNotes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return CheckoutResponse{}, err
	}

	orderID, err := u.orderRepository.Save(ctx, o, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return CheckoutResponse{}, err
	}

	orderCode, err := u.assignOrderCode(ctx, orderID, now, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return CheckoutResponse{}, err
	}

	for _, line := range lines {
		item := Item{
			OrderID:      orderID,
			ServiceID:    line.ServiceID,
			ServiceName:  line.ServiceName,
			Quantity:     line.Quantity,
			PricePerUnit: line.PricePerUnit,
			LineTotal:    line.LineTotal,
			Details:      line.Details,
			Answers:      line.Answers,
		}

		if err := u.itemRepository.Save(ctx, item, tx); err != nil {
			u.orderRepository.Rollback(ctx, tx)
			return CheckoutResponse{}, err
		}
	}

	if appliedPromotion != nil {
		usage := buildPromotionUsage(orderID, *appliedPromotion, c, lines, subtotal, discount)
		if err := u.promotionUsageRepository.Save(ctx, usage, tx); err != nil {
			u.orderRepository.Rollback(ctx, tx)
			return CheckoutResponse{}, err
		}
	}

	payment := Payment{
		OrderID:   orderID,
		Method:    req.PaymentPreference,
		Amount:    grandTotal,
		Currency:  u.currency,
		Status:    PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	paymentID, err := u.paymentRepository.Save(ctx, payment, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return CheckoutResponse{}, err
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		return CheckoutResponse{}, err
	}

	resp := CheckoutResponse{
		OrderID:    orderID,
		OrderCode:  orderCode,
		PaymentID:  paymentID,
		GrandTotal: grandTotal,
	}

	var invoiceURL *string

	if req.PaymentPreference == PaymentMethodOnline && grandTotal > 0 {
		invoice, err := u.createInvoice(ctx, orderCode, grandTotal, c, lines)
		if err != nil {
			// The order already committed, so the guest can retry the
			// payment from the order list.
			u.deliverOrderCreated(stay, c, o, orderID, orderCode, paymentID, lines, nil, now)
			u.publishOrderCreated(ctx, o, orderID, orderCode, c.ID)
			return CheckoutResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "payment could not be started")
		}

		invoiceURL = &invoice.InvoiceURL
		resp.InvoiceURL = invoiceURL

		if err := u.paymentRepository.UpdateExternalReference(ctx, paymentID, invoice.ID, invoice.InvoiceURL, nil); err != nil {
			u.logger.WithContext(ctx).WithError(err).Error()
		}
	}

	u.deliverOrderCreated(stay, c, o, orderID, orderCode, paymentID, lines, invoiceURL, now)
	u.publishOrderCreated(ctx, o, orderID, orderCode, c.ID)

	return resp, nil
}

// GetManyOrder implements OrderUseCase.
func (u *orderUseCase) GetManyOrder(ctx context.Context, req GetManyOrderRequest) (GetManyOrderResponse, PageMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	stay, err := session.GetStayFromCtx(ctx)
	if err != nil {
		return GetManyOrderResponse{}, PageMeta{}, err
	}

	offset := (req.Page - 1) * req.Size

	orders, err := u.orderRepository.FindManyByStayID(ctx, stay.ID, offset, req.Size, nil)
	if err != nil {
		return GetManyOrderResponse{}, PageMeta{}, err
	}

	total, err := u.orderRepository.CountByStayID(ctx, stay.ID, nil)
	if err != nil {
		return GetManyOrderResponse{}, PageMeta{}, err
	}

	responses := make([]OrderResponse, 0, len(orders))

	for _, o := range orders {
		items, err := u.itemRepository.FindManyByOrderID(ctx, o.ID, nil)
		if err != nil {
			return GetManyOrderResponse{}, PageMeta{}, err
		}
		o.Items = items

		var latestPayment *Payment
		p, err := u.paymentRepository.FindLatestByOrderID(ctx, o.ID, nil)
		if err == nil {
			latestPayment = &p
		} else if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusNotFound {
			return GetManyOrderResponse{}, PageMeta{}, err
		}

		var resp OrderResponse
		resp.PopulateFromEntity(o, latestPayment)
		responses = append(responses, resp)
	}

	meta := PageMeta{
		Page:  req.Page,
		Size:  req.Size,
		Total: total,
	}

	return GetManyOrderResponse{Orders: responses}, meta, nil
}

// OnPaymentNotification implements OrderUseCase.
func (u *orderUseCase) OnPaymentNotification(ctx context.Context, event PaymentNotificationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	o, err := u.orderRepository.FindByOrderCode(ctx, event.ExternalID, nil)
	if err != nil {
		if ae := errors.Destruct(err); ae.HTTPStatusCode == http.StatusNotFound {
			u.logger.WithContext(ctx).WithField("external_id", event.ExternalID).Warn("payment notification for an unknown order, acknowledged")
			return nil
		}

		return err
	}

	switch event.Status {
	case xendit.InvoiceStatusPaid:
		if o.Status == OrderStatusPaid {
			return nil
		}

		paidAt := time.Now().UTC()
		if err := u.settleOrder(ctx, o.ID, OrderStatusPaid, PaymentStatusPaid, &paidAt); err != nil {
			return err
		}

		u.publishOrderPaid(ctx, o, paidAt)

		return nil

	case xendit.InvoiceStatusExpired:
		if o.Status != OrderStatusPending {
			return nil
		}

		return u.settleOrder(ctx, o.ID, OrderStatusFailed, PaymentStatusFailed, nil)

	default:
		u.logger.WithContext(ctx).WithFields(logrus.Fields{
			"external_id": event.ExternalID,
			"status":      event.Status,
		}).Info("payment notification with unhandled status, ignored")

		return nil
	}
}

func (u *orderUseCase) settleOrder(ctx context.Context, orderID int64, orderStatus, paymentStatus string, paidAt *time.Time) error {
	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return err
	}

	if err := u.orderRepository.UpdateStatus(ctx, orderID, orderStatus, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	payment, err := u.paymentRepository.FindLatestByOrderID(ctx, orderID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	if err := u.paymentRepository.UpdateStatus(ctx, payment.ID, paymentStatus, paidAt, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return err
	}

	return u.orderRepository.CommitTx(ctx, tx)
}

// assignOrderCode swaps the provisional code for the public one. The code
// embeds the order id, so candidates are checked inside the transaction and
// the unique constraint on orders.order_code backstops concurrent writers.
func (u *orderUseCase) assignOrderCode(ctx context.Context, orderID int64, now time.Time, tx *sql.Tx) (string, error) {
	for attempt := 0; attempt < orderCodeMaxAttempts; attempt++ {
		code := util.GenerateOrderCode(orderID, now)

		exists, err := u.orderRepository.ExistsByOrderCode(ctx, code, tx)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		if err := u.orderRepository.UpdateOrderCode(ctx, orderID, code, tx); err != nil {
			return "", err
		}

		return code, nil
	}

	u.logger.WithContext(ctx).WithField("order_id", orderID).Error("exhausted order code generation attempts")

	return "", errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while generating order's code")
}

func (u *orderUseCase) findCustomerOfStay(ctx context.Context, stay session.Stay) (customer.Customer, error) {
	c, err := u.customerRepository.FindByID(ctx, stay.CustomerID, nil)
	if err != nil {
		if ae := errors.Destruct(err); ae.HTTPStatusCode == http.StatusNotFound {
			return customer.Customer{}, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, "the stay has no customer on record")
		}

		return customer.Customer{}, err
	}

	return c, nil
}

func (u *orderUseCase) createInvoice(ctx context.Context, orderCode string, grandTotal float64, c customer.Customer, lines []CartLine) (xendit.CreateInvoiceResponse, error) {
	invoiceCustomer := xendit.InvoiceCustomer{
		GivenNames: c.Name,
		Email:      "guest@hotel.com",
	}
	if invoiceCustomer.GivenNames == "" {
		invoiceCustomer.GivenNames = "Guest"
	}
	if c.Email != nil && *c.Email != "" {
		invoiceCustomer.Email = *c.Email
	}
	if c.Phone != nil {
		invoiceCustomer.MobileNumber = *c.Phone
	}

	items := make([]xendit.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		quantity := int64(line.Quantity)
		if quantity < 1 {
			quantity = 1
		}

		items = append(items, xendit.InvoiceItem{
			Name:     line.ServiceName,
			Quantity: quantity,
			Price:    int64(line.LineTotal) / quantity,
		})
	}

	req := xendit.CreateInvoiceRequest{
		ExternalID:         orderCode,
		Amount:             int64(math.Round(grandTotal)),
		Description:        fmt.Sprintf("Hotel service order %s", orderCode),
		Customer:           invoiceCustomer,
		SuccessRedirectURL: u.successRedirectURL,
		FailureRedirectURL: u.failureRedirectURL,
		Currency:           u.currency,
		Items:              items,
	}

	return u.xenditRepository.CreateInvoice(ctx, req)
}

func (u *orderUseCase) deliverOrderCreated(stay session.Stay, c customer.Customer, o Order, orderID int64, orderCode string, paymentID int64, lines []CartLine, invoiceURL *string, now time.Time) {
	if u.notifier == nil {
		return
	}

	items := make([]webhook.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, webhook.InvoiceItem{
			ServiceID:    line.ServiceID,
			ServiceName:  line.ServiceName,
			Quantity:     line.Quantity,
			PricePerUnit: line.PricePerUnit,
			LineTotal:    line.LineTotal,
			Details:      line.Details,
			Answers:      line.Answers,
		})
	}

	guestName := c.Name

	u.notifier.Enqueue(webhook.OrderCreatedInvoice{
		StayID:        stay.ID,
		StayToken:     stay.Token,
		GuestName:     &guestName,
		GuestPhone:    c.Phone,
		RoomLabel:     stay.RoomLabel,
		OrderID:       orderID,
		OrderCode:     orderCode,
		Notes:         o.Notes,
		Subtotal:      o.Subtotal,
		DiscountTotal: o.DiscountTotal,
		GrandTotal:    o.GrandTotal,
		Currency:      u.currency,
		Items:         items,
		PaymentURL:    invoiceURL,
		Payment: webhook.PaymentInfo{
			PaymentID: paymentID,
			Method:    o.PaymentPreference,
			Status:    PaymentStatusPending,
			Amount:    o.GrandTotal,
			Currency:  u.currency,
		},
		CreatedAtISO: now.Format(time.RFC3339),
	})
}

func (u *orderUseCase) publishOrderCreated(ctx context.Context, o Order, orderID int64, orderCode string, customerID int64) {
	if u.publisher == nil {
		return
	}

	event := OrderCreatedEvent{
		OrderID:           orderID,
		OrderCode:         orderCode,
		StayID:            o.StayID,
		CustomerID:        customerID,
		PaymentPreference: o.PaymentPreference,
		Subtotal:          o.Subtotal,
		DiscountTotal:     o.DiscountTotal,
		GrandTotal:        o.GrandTotal,
	}

	buff, _ := json.Marshal(event)

	if err := u.publisher.Publish(ctx, "order-created", orderCode, nil, buff); err != nil {
		u.logger.WithContext(ctx).WithError(err).Error()
	}
}

func (u *orderUseCase) publishOrderPaid(ctx context.Context, o Order, paidAt time.Time) {
	if u.publisher == nil {
		return
	}

	event := OrderPaidEvent{
		OrderID:   o.ID,
		OrderCode: o.OrderCode,
		PaidAt:    paidAt.Format(time.RFC3339),
	}

	buff, _ := json.Marshal(event)

	if err := u.publisher.Publish(ctx, "order-paid", o.OrderCode, nil, buff); err != nil {
		u.logger.WithContext(ctx).WithError(err).Error()
	}
}

func buildPromotionUsage(orderID int64, p promotion.Promotion, c customer.Customer, lines []CartLine, subtotal, discount float64) PromotionUsage {
	var freeServiceQty int64
	if p.FreeServiceQty != nil {
		freeServiceQty = *p.FreeServiceQty
	}
	if p.FreeServiceID != nil && freeServiceQty == 0 {
		freeServiceQty = 1
	}

	var birthDate *string
	if c.BirthDate != nil {
		formatted := c.BirthDate.Format("2006-01-02")
		birthDate = &formatted
	}

	return PromotionUsage{
		OrderID:         orderID,
		PromotionID:     p.ID,
		DiscountApplied: discount,
		FreeServiceID:   p.FreeServiceID,
		FreeServiceQty:  freeServiceQty,
		Snapshot: UsageSnapshot{
			Promotion: snapshotPromotion(p),
			Customer: SnapshotCustomer{
				ID:             c.ID,
				Name:           c.Name,
				BirthDate:      birthDate,
				MembershipType: c.MembershipTier,
			},
			Services: lines,
			Computed: SnapshotComputed{
				Subtotal:      subtotal,
				DiscountTotal: discount,
			},
		},
	}
}

func snapshotPromotion(p promotion.Promotion) SnapshotPromotion {
	return SnapshotPromotion{
		ID:                 p.ID,
		Name:               p.Name,
		Type:               p.Type,
		DiscountPercent:    p.DiscountPercent,
		DiscountAmount:     p.DiscountAmount,
		FreeServiceID:      p.FreeServiceID,
		FreeServiceQty:     p.FreeServiceQty,
		BirthdayDaysBefore: p.BirthdayDaysBefore,
		MembershipTier:     p.MembershipTier,
		EventCode:          p.EventCode,
	}
}

func sumLineTotals(lines []CartLine) float64 {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.LineTotal
	}

	return subtotal
}

func serviceIDsOf(lines []CartLine) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ServiceID)
	}

	return ids
}

func pricedLinesOf(lines []CartLine) []promotion.PricedLine {
	priced := make([]promotion.PricedLine, 0, len(lines))
	for _, line := range lines {
		priced = append(priced, promotion.PricedLine{
			ServiceID: line.ServiceID,
			LineTotal: line.LineTotal,
		})
	}

	return priced
}
