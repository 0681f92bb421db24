package register

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/catalog"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/inventory"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/products"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/users"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service runs the register checkout path and its history queries.
type Service interface {
	Create(ctx context.Context, input CreateTransactionInput) (*CreateTransactionResult, error)
	Get(ctx context.Context, id int64) (*models.RegisterTransaction, error)
	Search(ctx context.Context, query SearchQuery, params pagination.Params) (pagination.Page[models.RegisterTransaction], error)
	UpdateTotals(ctx context.Context, id int64) (*models.RegisterTransaction, error)
	Void(ctx context.Context, input VoidInput) (*models.RegisterTransaction, error)
}

// LineInput is one sold item on an incoming transaction.
type LineInput struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// PaymentInput is one tender allocation on an incoming transaction.
type PaymentInput struct {
	PaymentMethodID int64
	Amount          decimal.Decimal
}

// CreateTransactionInput carries a complete checkout request.
type CreateTransactionInput struct {
	CustomerID    int64
	UserID        int64
	DateTime      *time.Time
	TotalAmount   decimal.Decimal
	BalanceAmount decimal.Decimal
	Lines         []LineInput
	Payments      []PaymentInput
}

// CreateTransactionResult pairs the stored transaction with an optional
// low-stock notification.
type CreateTransactionResult struct {
	Transaction          *models.RegisterTransaction `json:"transaction"`
	LowStockNotification *string                     `json:"lowStockNotification"`
}

// SearchQuery mirrors the history filters the POS exposes. A reversed date
// range is swapped; the end date is pushed to its day end so same-day ranges
// behave inclusively.
type SearchQuery struct {
	From            *time.Time
	To              *time.Time
	UserID          *int64
	CustomerID      *int64
	ProductID       *int64
	PaymentMethodID *int64
	ActiveOnly      bool
}

// VoidInput deactivates a transaction while keeping the audit trail.
type VoidInput struct {
	TransactionID int64
	Reason        string
	ActorUserID   int64
}

type service struct {
	repo       *Repository
	inv        inventory.Service
	productsRp *products.Repository
	customers  *catalog.CustomerRepository
	methods    *catalog.PaymentMethodRepository
	userRepo   *users.Repository
	dbClient   *db.Client
	logg       *logger.Logger
	now        func() time.Time
}

// NewService wires the register service with its collaborators.
func NewService(
	repo *Repository,
	inv inventory.Service,
	productsRp *products.Repository,
	customers *catalog.CustomerRepository,
	methods *catalog.PaymentMethodRepository,
	userRepo *users.Repository,
	dbClient *db.Client,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("register repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if productsRp == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if methods == nil {
		return nil, fmt.Errorf("payment method repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		inv:        inv,
		productsRp: productsRp,
		customers:  customers,
		methods:    methods,
		userRepo:   userRepo,
		dbClient:   dbClient,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// Create validates the full request, then persists the header, lines, and
// payments and applies one sale movement per stock-tracked line, all inside
// one transaction. Any ledger rejection rolls everything back.
func (s *service) Create(ctx context.Context, input CreateTransactionInput) (*CreateTransactionResult, error) {
	if err := s.validateCreate(ctx, input); err != nil {
		return nil, err
	}

	dateTime := s.now()
	if input.DateTime != nil {
		dateTime = *input.DateTime
	}

	var lowStock []string
	transaction := &models.RegisterTransaction{
		CustomerID:    input.CustomerID,
		UserID:        input.UserID,
		DateTime:      dateTime,
		TotalAmount:   input.TotalAmount,
		BalanceAmount: input.BalanceAmount,
		IsActive:      true,
	}
	for _, line := range input.Lines {
		transaction.Lines = append(transaction.Lines, models.TransactionLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
		})
	}
	for _, payment := range input.Payments {
		transaction.Payments = append(transaction.Payments, models.TransactionPayment{
			PaymentMethodID: payment.PaymentMethodID,
			Amount:          payment.Amount,
		})
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, transaction); err != nil {
			return err
		}

		productsRepo := s.productsRp.WithTx(tx)
		for _, line := range input.Lines {
			product, err := productsRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %d not found", line.ProductID))
				}
				return err
			}
			if product.Category != nil && product.Category.SkipsStockMovement() {
				continue
			}

			movement, err := s.inv.RecordMovement(ctx, tx, inventory.RecordMovementInput{
				ProductID:   line.ProductID,
				Kind:        enums.MovementKindSale,
				Quantity:    -line.Quantity,
				ReferenceID: &transaction.ID,
				ActorUserID: &input.UserID,
			})
			if err != nil {
				return err
			}
			if movement.NewStock <= product.LowStockThreshold {
				lowStock = append(lowStock, fmt.Sprintf("%s (%d left)", product.Name, movement.NewStock))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stored, err := s.Get(ctx, transaction.ID)
	if err != nil {
		return nil, err
	}

	result := &CreateTransactionResult{Transaction: stored}
	if len(lowStock) > 0 {
		message := "Low stock: " + strings.Join(lowStock, ", ")
		result.LowStockNotification = &message
		s.logg.Warn(s.logg.WithField(ctx, "transaction_id", transaction.ID), message)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.RegisterTransaction, error) {
	transaction, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, err
	}
	return transaction, nil
}

func (s *service) Search(ctx context.Context, query SearchQuery, params pagination.Params) (pagination.Page[models.RegisterTransaction], error) {
	from, to := normalizeRange(query.From, query.To)
	filter := Filter{
		From:            from,
		To:              to,
		UserID:          query.UserID,
		CustomerID:      query.CustomerID,
		ProductID:       query.ProductID,
		PaymentMethodID: query.PaymentMethodID,
		ActiveOnly:      query.ActiveOnly,
	}
	items, total, err := s.repo.Search(ctx, filter, params)
	if err != nil {
		return pagination.Page[models.RegisterTransaction]{}, err
	}
	return pagination.NewPage(items, params, total), nil
}

// UpdateTotals recomputes the header total from current product prices and
// re-derives the balance from the recorded payments.
func (s *service) UpdateTotals(ctx context.Context, id int64) (*models.RegisterTransaction, error) {
	transaction, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range transaction.Lines {
		price := line.UnitPrice
		if line.Product != nil {
			price = line.Product.UnitPrice
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.Discount))
	}

	paid := decimal.Zero
	for _, payment := range transaction.Payments {
		paid = paid.Add(payment.Amount)
	}
	balance := paid.Sub(total)

	if err := s.repo.UpdateTotals(ctx, id, total, balance); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Void appends the audit record and deactivates the transaction. Nothing is
// deleted.
func (s *service) Void(ctx context.Context, input VoidInput) (*models.RegisterTransaction, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "void reason is required")
	}
	transaction, err := s.Get(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if !transaction.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeDomainInvariant, "transaction already voided")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateVoidRecord(ctx, &models.VoidRecord{
			TransactionID: input.TransactionID,
			Reason:        strings.TrimSpace(input.Reason),
			ActorUserID:   input.ActorUserID,
		}); err != nil {
			return err
		}
		return repo.SetActive(ctx, input.TransactionID, false)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, input.TransactionID)
}

func (s *service) validateCreate(ctx context.Context, input CreateTransactionInput) error {
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction requires at least one line")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() || line.Discount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line amounts must be non-negative")
		}
	}
	if len(input.Payments) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction requires at least one payment")
	}
	for _, payment := range input.Payments {
		if payment.Amount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment amounts must be non-negative")
		}
		if _, err := s.methods.FindByID(ctx, payment.PaymentMethodID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment method %d not found", payment.PaymentMethodID))
			}
			return err
		}
	}
	if _, err := s.customers.FindByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "customer not found")
		}
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "user not found")
		}
		return err
	}
	return nil
}

// normalizeRange swaps a reversed range and widens the end to its day end.
func normalizeRange(from, to *time.Time) (*time.Time, *time.Time) {
	if from != nil && to != nil && from.After(*to) {
		from, to = to, from
	}
	if to != nil {
		end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
		to = &end
	}
	return from, to
}
