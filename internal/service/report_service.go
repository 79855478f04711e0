package service

import (
	"context"
	"time"

	"zenith/internal/dto"
	"zenith/internal/model"
	"zenith/internal/repository"

	"github.com/shopspring/decimal"
)

// ReportService computes the dashboard figures. Everything here is read-only
// and derived from Sales, so revenue automatically tracks paid invoices.
type ReportService interface {
	Summary(ctx context.Context) (*dto.DashboardSummary, error)
	// RevenueLast7Days returns per-day revenue for the trailing week,
	// oldest day first.
	RevenueLast7Days(ctx context.Context) ([]dto.DailyRevenue, error)
}

type reportService struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	now          func() time.Time
}

func NewReportService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
) ReportService {
	return &reportService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		now:          time.Now,
	}
}

func (s *reportService) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	sales, err := s.saleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now().Format(model.SaleDateLayout)
	todays := decimal.Zero
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Amount)
		if sale.Date == today {
			todays = todays.Add(sale.Amount)
		}
	}

	unpaid := 0
	for _, inv := range invoices {
		if inv.Status == model.StatusUnpaid {
			unpaid++
		}
	}

	return &dto.DashboardSummary{
		TodaysRevenue:  todays,
		TotalRevenue:   total,
		TotalProducts:  len(products),
		TotalCustomers: len(customers),
		TotalInvoices:  len(invoices),
		UnpaidInvoices: unpaid,
	}, nil
}

func (s *reportService) RevenueLast7Days(ctx context.Context) ([]dto.DailyRevenue, error) {
	sales, err := s.saleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]decimal.Decimal)
	for _, sale := range sales {
		byDay[sale.Date] = byDay[sale.Date].Add(sale.Amount)
	}

	result := make([]dto.DailyRevenue, 0, 7)
	for i := 6; i >= 0; i-- {
		day := s.now().AddDate(0, 0, -i)
		date := day.Format(model.SaleDateLayout)
		total := byDay[date]
		if total.IsZero() {
			total = decimal.Zero
		}
		result = append(result, dto.DailyRevenue{
			Date:  date,
			Label: day.Format("Mon"),
			Total: total,
		})
	}
	return result, nil
}
