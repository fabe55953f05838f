package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// OperationsReport aggregates a transporter's fleet, drivers, and trips
// for the reports screen
type OperationsReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Fleet       models.FleetStats  `json:"fleet"`
	Drivers     models.DriverStats `json:"drivers"`
	Trips       models.TripStats   `json:"trips"`

	// TopRoutes lists the transporter's trips grouped by route code,
	// ordered as stored
	TopRoutes []RoutePerformance `json:"top_routes"`
}

// RoutePerformance summarizes trip activity on one route
type RoutePerformance struct {
	RouteCode  string  `json:"route_code"`
	TripCount  int     `json:"trip_count"`
	Passengers int     `json:"passengers"`
	Revenue    float64 `json:"revenue"`
}

// ReportService builds operations reports and their PDF exports
type ReportService struct {
	store *store.Store
}

// NewReportService creates a report service
func NewReportService(st *store.Store) *ReportService {
	return &ReportService{store: st}
}

// Build aggregates the transporter's current operational numbers
func (s *ReportService) Build(transporterID string) (*OperationsReport, error) {
	fleet, err := s.store.Buses.Stats(transporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to build fleet stats: %w", err)
	}

	drivers, err := s.store.Drivers.Stats(transporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to build driver stats: %w", err)
	}

	trips, err := s.store.Trips.Stats(transporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to build trip stats: %w", err)
	}

	allTrips, err := s.store.Trips.List(transporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	return &OperationsReport{
		GeneratedAt: time.Now(),
		Fleet:       fleet,
		Drivers:     drivers,
		Trips:       trips,
		TopRoutes:   groupByRoute(allTrips),
	}, nil
}

// GeneratePDF renders the report as a PDF document and returns the
// bytes plus a suggested filename
func (s *ReportService) GeneratePDF(transporterID, companyName string) ([]byte, string, error) {
	report, err := s.Build(transporterID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Operations Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "OPERATIONS REPORT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	if companyName != "" {
		pdf.Cell(0, 7, "Operator    : "+companyName)
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, "Generated   : "+report.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Fleet")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Buses total    : %d", report.Fleet.Total),
		fmt.Sprintf("Active         : %d", report.Fleet.Active),
		fmt.Sprintf("In maintenance : %d", report.Fleet.Maintenance),
		fmt.Sprintf("Inactive       : %d", report.Fleet.Inactive),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Drivers")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	lines = []string{
		fmt.Sprintf("Drivers total  : %d", report.Drivers.Total),
		fmt.Sprintf("On duty        : %d", report.Drivers.OnDuty),
		fmt.Sprintf("Online         : %d", report.Drivers.Online),
		fmt.Sprintf("Offline        : %d", report.Drivers.Offline),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trips")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	lines = []string{
		fmt.Sprintf("Trips total    : %d", report.Trips.Total),
		fmt.Sprintf("Active         : %d", report.Trips.Active),
		fmt.Sprintf("Upcoming       : %d", report.Trips.Upcoming),
		fmt.Sprintf("Completed      : %d", report.Trips.Completed),
		fmt.Sprintf("Passengers     : %d", report.Trips.TotalPassengers),
		fmt.Sprintf("Revenue        : %.2f", report.Trips.TotalRevenue),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	if len(report.TopRoutes) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "By route")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, route := range report.TopRoutes {
			pdf.Cell(0, 6, fmt.Sprintf("%-8s trips: %d  passengers: %d  revenue: %.2f",
				route.RouteCode, route.TripCount, route.Passengers, route.Revenue))
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render report PDF: %w", err)
	}

	filename := fmt.Sprintf("operations_report_%s.pdf", report.GeneratedAt.Format("20060102"))
	return buf.Bytes(), filename, nil
}

func groupByRoute(trips []models.Trip) []RoutePerformance {
	order := []string{}
	grouped := map[string]*RoutePerformance{}

	for _, trip := range trips {
		perf, ok := grouped[trip.RouteCode]
		if !ok {
			perf = &RoutePerformance{RouteCode: trip.RouteCode}
			grouped[trip.RouteCode] = perf
			order = append(order, trip.RouteCode)
		}
		perf.TripCount++
		perf.Passengers += trip.PassengerCount
		perf.Revenue += trip.Revenue
	}

	result := make([]RoutePerformance, 0, len(order))
	for _, code := range order {
		result = append(result, *grouped[code])
	}
	return result
}
