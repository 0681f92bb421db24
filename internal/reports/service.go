package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/users"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service generates the X (preview) and Z (finalizing) shift reconciliation
// reports. Both resolve the same window; only Z writes a checkpoint.
type Service interface {
	XReport(ctx context.Context, userID int64) (*XReport, error)
	ZReport(ctx context.Context, userID int64) (*ZReport, error)
}

const unknownLabel = "Unknown"

// PaymentBreakdown is one operator's tender totals.
type PaymentBreakdown struct {
	UserName string                     `json:"userName"`
	Payments map[string]decimal.Decimal `json:"payments"`
}

// XReport is the non-finalizing shift summary.
type XReport struct {
	ReportGeneratedBy    string                     `json:"reportGeneratedBy"`
	StartDate            time.Time                  `json:"startDate"`
	EndDate              time.Time                  `json:"endDate"`
	CategoryTotals       map[string]decimal.Decimal `json:"categoryTotals"`
	OverallPaymentTotals map[string]decimal.Decimal `json:"overallPaymentTotals"`
	UserPaymentDetails   []PaymentBreakdown         `json:"userPaymentDetails"`
	TotalTransactions    int                        `json:"totalTransactions"`
	TotalSales           decimal.Decimal            `json:"totalSales"`
	TotalBalanceAmount   decimal.Decimal            `json:"totalBalanceAmount"`
	CashTotal            decimal.Decimal            `json:"cashTotal"`
	Difference           decimal.Decimal            `json:"difference"`
}

// DayTotals is one calendar-day bucket inside a Z report.
type DayTotals struct {
	CategoryTotals       map[string]decimal.Decimal `json:"categoryTotals"`
	OverallPaymentTotals map[string]decimal.Decimal `json:"overallPaymentTotals"`
	UserPaymentDetails   []PaymentBreakdown         `json:"userPaymentDetails"`
	TotalSales           decimal.Decimal            `json:"totalSales"`
	TotalTransactions    int                        `json:"totalTransactions"`
	BalanceAmount        decimal.Decimal            `json:"balanceAmount"`
}

// ZDay pairs a date key with its bucket; days are sorted ascending.
type ZDay struct {
	Date   string    `json:"date"`
	Totals DayTotals `json:"totals"`
}

// ZReport is the finalizing day-bucketed summary.
type ZReport struct {
	ReportGeneratedBy  string          `json:"reportGeneratedBy"`
	StartDate          time.Time       `json:"startDate"`
	EndDate            time.Time       `json:"endDate"`
	DateWiseTotals     []ZDay          `json:"dateWiseTotals"`
	FullyTotalSales    decimal.Decimal `json:"fullyTotalSales"`
	TotalBalanceAmount decimal.Decimal `json:"totalBalanceAmount"`
	Difference         decimal.Decimal `json:"difference"`
}

type service struct {
	repo     *Repository
	userRepo *users.Repository
	dbClient *db.Client
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the reporting service.
func NewService(repo *Repository, userRepo *users.Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
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
	return &service{repo: repo, userRepo: userRepo, dbClient: dbClient, logg: logg, now: time.Now}, nil
}

// XReport previews the open shift without closing it.
func (s *service) XReport(ctx context.Context, userID int64) (*XReport, error) {
	operator, err := s.loadOperator(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end, err := s.resolveWindow(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	transactions, err := s.repo.ListTransactionsInWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"transactions": len(transactions),
		"start":        start,
		"end":          end,
	}), "x report window resolved")

	return buildXReport(operatorName(operator), start, end, transactions), nil
}

// ZReport closes the shift: the aggregation and the checkpoint write share
// one transaction, so the next window starts exactly where this one ended.
func (s *service) ZReport(ctx context.Context, userID int64) (*ZReport, error) {
	operator, err := s.loadOperator(ctx, userID)
	if err != nil {
		return nil, err
	}

	var report *ZReport
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		start, end, werr := s.resolveWindow(ctx, repo)
		if werr != nil {
			return werr
		}

		transactions, lerr := repo.ListTransactionsInWindow(ctx, start, end)
		if lerr != nil {
			return lerr
		}

		report = buildZReport(operatorName(operator), start, end, transactions)

		return repo.CreateCheckpoint(ctx, &models.ReconciliationCheckpoint{
			GeneratedAt: end,
			GeneratedBy: operator.ID,
			Kind:        enums.ReportKindZ,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"generated_by": operator.ID,
		"start":        report.StartDate,
		"end":          report.EndDate,
	}), "z report checkpoint written")
	return report, nil
}

// resolveWindow implements the shared window resolution:
//  1. end = now
//  2. start = latest checkpoint, else dateTime of transaction id 1, else the
//     earliest transaction by id
//  3. advance start to the first transaction strictly after it, when one exists
//  4. clamp a start that overtook end back to the start of end's calendar day
func (s *service) resolveWindow(ctx context.Context, repo *Repository) (time.Time, time.Time, error) {
	count, err := repo.CountTransactions(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if count == 0 {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeDomainInvariant, "no transactions to report")
	}

	end := s.now()

	var start time.Time
	checkpoint, err := repo.LatestCheckpoint(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	switch {
	case checkpoint != nil:
		start = checkpoint.GeneratedAt
	default:
		first, err := repo.TransactionDateTimeByID(ctx, 1)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if first == nil {
			first, err = repo.EarliestTransactionDateTime(ctx)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		start = *first
	}

	next, err := repo.NextTransactionDateTimeAfter(ctx, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if next != nil {
		start = *next
	}

	if start.After(end) {
		start = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	}
	return start, end, nil
}

func (s *service) loadOperator(ctx context.Context, userID int64) (*models.User, error) {
	operator, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return operator, nil
}

func operatorName(user *models.User) string {
	return user.FirstName + " " + user.LastName
}

func buildXReport(generatedBy string, start, end time.Time, transactions []models.RegisterTransaction) *XReport {
	categoryTotals := map[string]decimal.Decimal{}
	paymentTotals := map[string]decimal.Decimal{}
	userPayments := map[string]map[string]decimal.Decimal{}
	totalBalance := decimal.Zero

	for _, transaction := range transactions {
		userName := transactionUserName(transaction)

		for _, line := range transaction.Lines {
			name, amount := lineCategoryAmount(line)
			categoryTotals[name] = mapTotal(categoryTotals, name).Add(amount)
		}
		for _, payment := range transaction.Payments {
			method := paymentMethodName(payment)
			paymentTotals[method] = mapTotal(paymentTotals, method).Add(payment.Amount)
			if userPayments[userName] == nil {
				userPayments[userName] = map[string]decimal.Decimal{}
			}
			userPayments[userName][method] = mapTotal(userPayments[userName], method).Add(payment.Amount)
		}
		totalBalance = totalBalance.Add(transaction.BalanceAmount)
	}

	totalSales := decimal.Zero
	for _, amount := range categoryTotals {
		totalSales = totalSales.Add(amount)
	}
	cashTotal := mapTotal(paymentTotals, models.PaymentMethodNameCash)

	return &XReport{
		ReportGeneratedBy:    generatedBy,
		StartDate:            start,
		EndDate:              end,
		CategoryTotals:       categoryTotals,
		OverallPaymentTotals: paymentTotals,
		UserPaymentDetails:   breakdownList(userPayments),
		TotalTransactions:    len(transactions),
		TotalSales:           totalSales,
		TotalBalanceAmount:   totalBalance,
		CashTotal:            cashTotal,
		Difference:           cashTotal.Sub(totalBalance),
	}
}

func buildZReport(generatedBy string, start, end time.Time, transactions []models.RegisterTransaction) *ZReport {
	type bucket struct {
		categoryTotals map[string]decimal.Decimal
		paymentTotals  map[string]decimal.Decimal
		userPayments   map[string]map[string]decimal.Decimal
		totalSales     decimal.Decimal
		transactions   int
		balance        decimal.Decimal
	}
	buckets := map[string]*bucket{}
	fullyTotalSales := decimal.Zero
	totalBalance := decimal.Zero

	for _, transaction := range transactions {
		dateKey := transaction.DateTime.UTC().Format("2006-01-02")
		day := buckets[dateKey]
		if day == nil {
			day = &bucket{
				categoryTotals: map[string]decimal.Decimal{},
				paymentTotals:  map[string]decimal.Decimal{},
				userPayments:   map[string]map[string]decimal.Decimal{},
				totalSales:     decimal.Zero,
				balance:        decimal.Zero,
			}
			buckets[dateKey] = day
		}
		day.transactions++

		userName := transactionUserName(transaction)
		for _, line := range transaction.Lines {
			name, amount := lineCategoryAmount(line)
			day.categoryTotals[name] = mapTotal(day.categoryTotals, name).Add(amount)
			day.totalSales = day.totalSales.Add(amount)
			fullyTotalSales = fullyTotalSales.Add(amount)
		}
		for _, payment := range transaction.Payments {
			method := paymentMethodName(payment)
			day.paymentTotals[method] = mapTotal(day.paymentTotals, method).Add(payment.Amount)
			if day.userPayments[userName] == nil {
				day.userPayments[userName] = map[string]decimal.Decimal{}
			}
			day.userPayments[userName][method] = mapTotal(day.userPayments[userName], method).Add(payment.Amount)
		}
		day.balance = day.balance.Add(transaction.BalanceAmount)
		totalBalance = totalBalance.Add(transaction.BalanceAmount)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	totalCash := decimal.Zero
	days := make([]ZDay, 0, len(keys))
	for _, key := range keys {
		day := buckets[key]
		totalCash = totalCash.Add(mapTotal(day.paymentTotals, models.PaymentMethodNameCash))
		days = append(days, ZDay{
			Date: key,
			Totals: DayTotals{
				CategoryTotals:       day.categoryTotals,
				OverallPaymentTotals: day.paymentTotals,
				UserPaymentDetails:   breakdownList(day.userPayments),
				TotalSales:           day.totalSales,
				TotalTransactions:    day.transactions,
				BalanceAmount:        day.balance,
			},
		})
	}

	return &ZReport{
		ReportGeneratedBy:  generatedBy,
		StartDate:          start,
		EndDate:            end,
		DateWiseTotals:     days,
		FullyTotalSales:    fullyTotalSales,
		TotalBalanceAmount: totalBalance,
		Difference:         totalCash.Sub(totalBalance),
	}
}

func lineCategoryAmount(line models.TransactionLine) (string, decimal.Decimal) {
	name := unknownLabel
	if line.Product != nil && line.Product.Category != nil {
		name = line.Product.Category.Name
	}
	amount := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.Discount)
	return name, amount
}

func paymentMethodName(payment models.TransactionPayment) string {
	if payment.PaymentMethod == nil {
		return unknownLabel
	}
	return payment.PaymentMethod.Name
}

func transactionUserName(transaction models.RegisterTransaction) string {
	if transaction.User == nil {
		return unknownLabel
	}
	return transaction.User.FirstName + " " + transaction.User.LastName
}

func mapTotal(totals map[string]decimal.Decimal, key string) decimal.Decimal {
	if value, ok := totals[key]; ok {
		return value
	}
	return decimal.Zero
}

func breakdownList(userPayments map[string]map[string]decimal.Decimal) []PaymentBreakdown {
	names := make([]string, 0, len(userPayments))
	for name := range userPayments {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]PaymentBreakdown, 0, len(names))
	for _, name := range names {
		list = append(list, PaymentBreakdown{UserName: name, Payments: userPayments[name]})
	}
	return list
}
