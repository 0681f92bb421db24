package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/inventory"
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

// Service handles invoiced sales: creation, returns, lookups, and the sales
// summary reports. Every stock effect goes through the inventory ledger.
type Service interface {
	Create(ctx context.Context, input CreateSaleInput) (*models.Sale, error)
	Return(ctx context.Context, input ReturnInput) (*models.Sale, error)
	Get(ctx context.Context, id int64) (*models.Sale, error)
	Search(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Sale], error)
	ReportDaily(ctx context.Context, date time.Time) (*DailyReport, error)
	ReportMonthly(ctx context.Context, year int, month time.Month) (*MonthlyReport, error)
	ReportByCategory(ctx context.Context, from, to *time.Time) ([]CategorySales, error)
	ReportBySupplier(ctx context.Context, from, to *time.Time) ([]SupplierSales, error)
}

// SaleItemInput is one line on a new sale.
type SaleItemInput struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// CreateSaleInput captures a new invoice.
type CreateSaleInput struct {
	UserID        int64
	CustomerID    *int64
	InvoiceNumber *string
	DateTime      *time.Time
	Items         []SaleItemInput
}

// ReturnItemInput identifies one sold item and how much of it comes back.
type ReturnItemInput struct {
	SaleItemID int64
	Quantity   int
}

// ReturnInput captures a (possibly partial) return against a sale.
type ReturnInput struct {
	SaleID      int64
	ActorUserID int64
	Items       []ReturnItemInput
}

// SaleSummary is the slim row the period reports list.
type SaleSummary struct {
	ID            int64            `json:"id"`
	InvoiceNumber string           `json:"invoiceNumber"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	DateTime      time.Time        `json:"dateTime"`
	Status        enums.SaleStatus `json:"status"`
}

// DailyReport summarizes one calendar day of sales.
type DailyReport struct {
	Date       string          `json:"date"`
	Count      int             `json:"count"`
	TotalSales decimal.Decimal `json:"totalSales"`
	Sales      []SaleSummary   `json:"sales"`
}

// MonthlyReport summarizes one calendar month of sales.
type MonthlyReport struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Count      int             `json:"count"`
	TotalSales decimal.Decimal `json:"totalSales"`
	Sales      []SaleSummary   `json:"sales"`
}

// CategorySales is one category's share of completed sales.
type CategorySales struct {
	CategoryName string          `json:"categoryName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Quantity     int             `json:"quantity"`
}

// SupplierSales is one supplier's share of completed sales.
type SupplierSales struct {
	SupplierName string          `json:"supplierName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Quantity     int             `json:"quantity"`
}

const (
	uncategorizedLabel = "Uncategorized"
	noSupplierLabel    = "No supplier"
)

type service struct {
	repo      *Repository
	inventory inventory.Service
	userRepo  *users.Repository
	dbClient  *db.Client
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the sales service.
func NewService(repo *Repository, inventorySvc inventory.Service, userRepo *users.Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if inventorySvc == nil {
		return nil, fmt.Errorf("inventory service required")
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
	return &service{repo: repo, inventory: inventorySvc, userRepo: userRepo, dbClient: dbClient, logg: logg, now: time.Now}, nil
}

// Create persists the invoice and deducts stock for every item in one
// transaction. An insufficient-stock conflict on any line rolls the whole
// sale back.
func (s *service) Create(ctx context.Context, input CreateSaleInput) (*models.Sale, error) {
	if err := s.validateCreate(ctx, input); err != nil {
		return nil, err
	}

	now := s.now()
	dateTime := now
	if input.DateTime != nil {
		dateTime = *input.DateTime
	}
	invoiceNumber := fmt.Sprintf("INV-%d", now.UnixMilli())
	if input.InvoiceNumber != nil && *input.InvoiceNumber != "" {
		invoiceNumber = *input.InvoiceNumber
	}

	subTotal := decimal.Zero
	discountTotal := decimal.Zero
	items := make([]models.SaleItem, 0, len(input.Items))
	for _, item := range input.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Sub(item.Discount)
		subTotal = subTotal.Add(lineTotal)
		discountTotal = discountTotal.Add(item.Discount)
		items = append(items, models.SaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Total:     lineTotal,
		})
	}

	sale := &models.Sale{
		InvoiceNumber: invoiceNumber,
		UserID:        input.UserID,
		CustomerID:    input.CustomerID,
		SubTotal:      subTotal,
		DiscountTotal: discountTotal,
		TotalAmount:   subTotal,
		Status:        enums.SaleStatusCompleted,
		DateTime:      dateTime,
		Items:         items,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, sale); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "invoice number already in use")
			}
			return err
		}
		for _, item := range sale.Items {
			note := fmt.Sprintf("Sale %s", sale.InvoiceNumber)
			_, err := s.inventory.RecordMovement(ctx, tx, inventory.RecordMovementInput{
				ProductID:   item.ProductID,
				Kind:        enums.MovementKindSale,
				Quantity:    -item.Quantity,
				ReferenceID: &sale.ID,
				ActorUserID: &sale.UserID,
				Note:        &note,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"sale_id": sale.ID,
		"invoice": sale.InvoiceNumber,
		"items":   len(sale.Items),
	}), "sale created")
	return s.Get(ctx, sale.ID)
}

// Return restocks returned quantities through the ledger, capping each item
// at what is still out. Items that resolve to a non-positive quantity are
// skipped rather than rejected.
func (s *service) Return(ctx context.Context, input ReturnInput) (*models.Sale, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return must specify at least one item")
	}
	if input.ActorUserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}

	sale, err := s.Get(ctx, input.SaleID)
	if err != nil {
		return nil, err
	}

	itemsByID := make(map[int64]*models.SaleItem, len(sale.Items))
	for i := range sale.Items {
		itemsByID[sale.Items[i].ID] = &sale.Items[i]
	}

	returned := 0
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, request := range input.Items {
			item, ok := itemsByID[request.SaleItemID]
			if !ok {
				continue
			}
			quantity := request.Quantity
			if remaining := item.Quantity - item.ReturnedQty; quantity > remaining {
				quantity = remaining
			}
			if quantity <= 0 {
				continue
			}
			item.ReturnedQty += quantity
			if err := repo.UpdateItemReturnedQty(ctx, item.ID, item.ReturnedQty); err != nil {
				return err
			}
			note := fmt.Sprintf("Return from sale %s", sale.InvoiceNumber)
			_, err := s.inventory.RecordMovement(ctx, tx, inventory.RecordMovementInput{
				ProductID:   item.ProductID,
				Kind:        enums.MovementKindReturn,
				Quantity:    quantity,
				ReferenceID: &sale.ID,
				ActorUserID: &input.ActorUserID,
				Note:        &note,
			})
			if err != nil {
				return err
			}
			returned += quantity
		}
		if returned == 0 {
			return nil
		}
		return repo.UpdateStatus(ctx, sale.ID, returnStatus(sale.Items))
	})
	if err != nil {
		return nil, err
	}

	if returned > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"sale_id":  sale.ID,
			"invoice":  sale.InvoiceNumber,
			"returned": returned,
		}), "sale return processed")
	}
	return s.Get(ctx, sale.ID)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, err
	}
	return sale, nil
}

func (s *service) Search(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Sale], error) {
	sales, total, err := s.repo.Search(ctx, filter, params)
	if err != nil {
		return pagination.Page[models.Sale]{}, err
	}
	return pagination.NewPage(sales, params, total), nil
}

// ReportDaily summarizes one calendar day. The count covers every sale that
// day; the total sums only sales that were never returned.
func (s *service) ReportDaily(ctx context.Context, date time.Time) (*DailyReport, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)

	sales, err := s.repo.ListInRange(ctx, start, end, nil)
	if err != nil {
		return nil, err
	}
	summaries, total := summarize(sales)
	return &DailyReport{
		Date:       start.Format("2006-01-02"),
		Count:      len(sales),
		TotalSales: total,
		Sales:      summaries,
	}, nil
}

// ReportMonthly summarizes one calendar month.
func (s *service) ReportMonthly(ctx context.Context, year int, month time.Month) (*MonthlyReport, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	sales, err := s.repo.ListInRange(ctx, start, end, nil)
	if err != nil {
		return nil, err
	}
	summaries, total := summarize(sales)
	return &MonthlyReport{
		Year:       year,
		Month:      int(month),
		Count:      len(sales),
		TotalSales: total,
		Sales:      summaries,
	}, nil
}

// ReportByCategory aggregates completed sales per product category.
func (s *service) ReportByCategory(ctx context.Context, from, to *time.Time) ([]CategorySales, error) {
	sales, err := s.listCompletedInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	totals := map[string]*CategorySales{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			name := uncategorizedLabel
			if item.Product != nil && item.Product.Category != nil {
				name = item.Product.Category.Name
			}
			entry := totals[name]
			if entry == nil {
				entry = &CategorySales{CategoryName: name, TotalAmount: decimal.Zero}
				totals[name] = entry
			}
			entry.TotalAmount = entry.TotalAmount.Add(item.Total)
			entry.Quantity += item.Quantity
		}
	}
	report := make([]CategorySales, 0, len(totals))
	for _, entry := range totals {
		report = append(report, *entry)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].CategoryName < report[j].CategoryName })
	return report, nil
}

// ReportBySupplier aggregates completed sales per product supplier.
func (s *service) ReportBySupplier(ctx context.Context, from, to *time.Time) ([]SupplierSales, error) {
	sales, err := s.listCompletedInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	totals := map[string]*SupplierSales{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			name := noSupplierLabel
			if item.Product != nil && item.Product.Supplier != nil {
				name = item.Product.Supplier.Name
			}
			entry := totals[name]
			if entry == nil {
				entry = &SupplierSales{SupplierName: name, TotalAmount: decimal.Zero}
				totals[name] = entry
			}
			entry.TotalAmount = entry.TotalAmount.Add(item.Total)
			entry.Quantity += item.Quantity
		}
	}
	report := make([]SupplierSales, 0, len(totals))
	for _, entry := range totals {
		report = append(report, *entry)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].SupplierName < report[j].SupplierName })
	return report, nil
}

func (s *service) listCompletedInRange(ctx context.Context, from, to *time.Time) ([]models.Sale, error) {
	start := time.Time{}
	if from != nil {
		start = *from
	}
	end := s.now()
	if to != nil {
		end = *to
	}
	return s.repo.ListInRange(ctx, start, end, []enums.SaleStatus{enums.SaleStatusCompleted})
}

func (s *service) validateCreate(ctx context.Context, input CreateSaleInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale must have at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() || item.Discount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item amounts must be non-negative")
		}
	}
	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "user not found")
		}
		return err
	}
	return nil
}

func returnStatus(items []models.SaleItem) enums.SaleStatus {
	allReturned := true
	for _, item := range items {
		if item.ReturnedQty < item.Quantity {
			allReturned = false
			break
		}
	}
	if allReturned {
		return enums.SaleStatusReturned
	}
	return enums.SaleStatusPartiallyReturned
}

func summarize(sales []models.Sale) ([]SaleSummary, decimal.Decimal) {
	total := decimal.Zero
	summaries := make([]SaleSummary, 0, len(sales))
	for _, sale := range sales {
		if sale.Status == enums.SaleStatusCompleted {
			total = total.Add(sale.TotalAmount)
		}
		summaries = append(summaries, SaleSummary{
			ID:            sale.ID,
			InvoiceNumber: sale.InvoiceNumber,
			TotalAmount:   sale.TotalAmount,
			DateTime:      sale.DateTime,
			Status:        sale.Status,
		})
	}
	return summaries, total
}
