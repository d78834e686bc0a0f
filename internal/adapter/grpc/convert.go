package grpc

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthflow-reports/internal/domain"
	"github.com/simaogato/wealthflow-reports/internal/usecase/aggregation"
	"github.com/simaogato/wealthflow-reports/internal/usecase/debt"
)

// DefaultCurrency is used for display amounts when the request has no currency
const DefaultCurrency = "EUR"

const dateLayout = "2006-01-02"

// filterRequest is the wire shape of domain.ReportFilter
type filterRequest struct {
	Period             string   `json:"period"`
	Entities           []string `json:"entities"`
	Assets             []string `json:"assets"`
	Currency           string   `json:"currency"`
	ReportType         string   `json:"report_type"`
	Liquidity          string   `json:"liquidity"`
	IncludeProjections bool     `json:"include_projections"`
	FiscalOptimization bool     `json:"fiscal_optimization"`
}

type reportRequest struct {
	UserID   string        `json:"user_id"`
	Scenario string        `json:"scenario"`
	Filters  filterRequest `json:"filters"`
}

type invalidateRequest struct {
	Pattern string `json:"pattern"`
	Family  string `json:"family"`
}

type debtRequest struct {
	AssetID          string `json:"asset_id"`
	Name             string `json:"name"`
	InitialAmount    string `json:"initial_amount"`
	InterestRate     string `json:"interest_rate"`
	DurationMonths   int    `json:"duration_months"`
	AmortizationType string `json:"amortization_type"`
	StartDate        string `json:"start_date"`
}

type paymentRequest struct {
	DebtID        string `json:"debt_id"`
	PaymentNumber int    `json:"payment_number"`
}

// decode maps a Struct onto a JSON-tagged request type
func decode(in *structpb.Struct, out any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// encode turns a JSON-tagged value into a Struct
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return structpb.NewStruct(fields)
}

// toFilter validates and converts the wire filters
func (f filterRequest) toFilter() (domain.ReportFilter, error) {
	entities, err := parseIDs("filters.entities", f.Entities)
	if err != nil {
		return domain.ReportFilter{}, err
	}
	assets, err := parseIDs("filters.assets", f.Assets)
	if err != nil {
		return domain.ReportFilter{}, err
	}

	currency := strings.ToUpper(f.Currency)
	if currency != "" && money.GetCurrency(currency) == nil {
		return domain.ReportFilter{}, fmt.Errorf("invalid currency: %s", f.Currency)
	}

	if f.Liquidity != "" && f.Liquidity != domain.LiquidityFilterAll {
		if !isKnownTier(f.Liquidity) {
			return domain.ReportFilter{}, fmt.Errorf("invalid liquidity tier: %s", f.Liquidity)
		}
	}

	return domain.ReportFilter{
		Period:             f.Period,
		Entities:           entities,
		Assets:             assets,
		Currency:           currency,
		ReportType:         f.ReportType,
		Liquidity:          f.Liquidity,
		IncludeProjections: f.IncludeProjections,
		FiscalOptimization: f.FiscalOptimization,
	}, nil
}

func isKnownTier(name string) bool {
	for _, tier := range aggregation.LiquidityTiers {
		if string(tier) == name {
			return true
		}
	}
	return false
}

func parseIDs(field string, raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", field, s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r debtRequest) toInput() (debt.CreateDebtInput, error) {
	var input debt.CreateDebtInput

	if r.AssetID != "" {
		assetID, err := uuid.Parse(r.AssetID)
		if err != nil {
			return input, fmt.Errorf("invalid asset_id format: %w", err)
		}
		input.AssetID = assetID
	}

	amount, err := decimal.NewFromString(r.InitialAmount)
	if err != nil {
		return input, fmt.Errorf("invalid initial_amount format: %w", err)
	}
	rate, err := decimal.NewFromString(r.InterestRate)
	if err != nil {
		return input, fmt.Errorf("invalid interest_rate format: %w", err)
	}
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return input, fmt.Errorf("invalid start_date format: %w", err)
	}

	input.Name = r.Name
	input.InitialAmount = amount
	input.InterestRate = rate
	input.DurationMonths = r.DurationMonths
	input.AmortizationType = domain.AmortizationType(strings.ToUpper(r.AmortizationType))
	input.StartDate = start
	return input, nil
}

// formatMoney renders an amount with its currency symbol, e.g. "€200,000.00"
// Unknown currencies yield an empty string.
func formatMoney(amount decimal.Decimal, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	currency := money.GetCurrency(code)
	if currency == nil {
		return ""
	}
	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, currency.Code).Display()
}

type paymentView struct {
	ID               string          `json:"id"`
	PaymentNumber    int             `json:"payment_number"`
	PaymentDate      string          `json:"payment_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	IsPaid           bool            `json:"is_paid"`
}

type debtView struct {
	ID               string          `json:"id"`
	AssetID          string          `json:"asset_id"`
	Name             string          `json:"name"`
	InitialAmount    decimal.Decimal `json:"initial_amount"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	DurationMonths   int             `json:"duration_months"`
	AmortizationType string          `json:"amortization_type"`
	StartDate        string          `json:"start_date"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Payments         []paymentView   `json:"payments"`
}

func newDebtView(d *domain.Debt) debtView {
	view := debtView{
		ID:               d.ID.String(),
		AssetID:          d.AssetID.String(),
		Name:             d.Name,
		InitialAmount:    d.InitialAmount,
		InterestRate:     d.InterestRate,
		DurationMonths:   d.DurationMonths,
		AmortizationType: string(d.AmortizationType),
		StartDate:        d.StartDate.Format(dateLayout),
		MonthlyPayment:   d.MonthlyPayment,
		RemainingBalance: d.RemainingBalance(),
		Payments:         make([]paymentView, 0, len(d.Payments)),
	}
	for _, p := range d.Payments {
		view.Payments = append(view.Payments, paymentView{
			ID:               p.ID.String(),
			PaymentNumber:    p.PaymentNumber,
			PaymentDate:      p.PaymentDate.Format(dateLayout),
			Principal:        p.Principal,
			Interest:         p.Interest,
			Total:            p.Total,
			RemainingBalance: p.RemainingBalance,
			IsPaid:           p.IsPaid,
		})
	}
	return view
}
