package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
	"github.com/minetrack/minetrack-backend-go/internal/domain/medical"
	"github.com/minetrack/minetrack-backend-go/internal/domain/report"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	eventRepo    event.Repository
	medicalRepo  medical.Repository
	employeeRepo employee.Repository
	deviceRepo   device.Repository

	// Device hosts whose turnstile direction is trusted over the event type.
	// Some lanes are wired backwards; the host lists correct for that.
	inHosts  map[string]struct{}
	outHosts map[string]struct{}

	now func() time.Time
}

func NewReportService(
	eventRepo event.Repository,
	medicalRepo medical.Repository,
	employeeRepo employee.Repository,
	deviceRepo device.Repository,
	inHosts, outHosts []string,
) report.Service {
	s := &ReportServiceImpl{
		eventRepo:    eventRepo,
		medicalRepo:  medicalRepo,
		employeeRepo: employeeRepo,
		deviceRepo:   deviceRepo,
		inHosts:      make(map[string]struct{}, len(inHosts)),
		outHosts:     make(map[string]struct{}, len(outHosts)),
		now:          time.Now,
	}
	for _, h := range inHosts {
		s.inHosts[h] = struct{}{}
	}
	for _, h := range outHosts {
		s.outHosts[h] = struct{}{}
	}
	return s
}

// Summary implements report.Service. The ESMO columns count employees by
// their most recent exam in the range, not raw exam events; the table has no
// review column, so review lands in fail.
func (s *ReportServiceImpl) Summary(ctx context.Context, from, to *time.Time) (report.Summary, error) {
	counts, err := s.eventRepo.CountByType(ctx, from, to)
	if err != nil {
		return report.Summary{}, err
	}

	blocked, err := s.eventRepo.CountRejected(ctx, from, to)
	if err != nil {
		return report.Summary{}, err
	}

	esmoOK, esmoFail, err := s.latestExamBuckets(ctx, from, to)
	if err != nil {
		return report.Summary{}, err
	}

	return report.Summary{
		TurnstileIn:  counts[event.TypeTurnstileIn],
		TurnstileOut: counts[event.TypeTurnstileOut],
		EsmoOK:       esmoOK,
		EsmoFail:     esmoFail,
		ToolTakes:    counts[event.TypeToolTake],
		ToolReturns:  counts[event.TypeToolReturn],
		MineIn:       counts[event.TypeMineIn],
		MineOut:      counts[event.TypeMineOut],
		Blocked:      blocked,
	}, nil
}

func (s *ReportServiceImpl) latestExamBuckets(ctx context.Context, from, to *time.Time) (esmoOK, esmoFail int64, err error) {
	terminals, err := s.esmoTerminalNames(ctx)
	if err != nil {
		return 0, 0, err
	}

	var nFrom, nTo *time.Time
	if from != nil {
		t := naiveWall(*from)
		nFrom = &t
	}
	if to != nil {
		t := naiveWall(*to)
		nTo = &t
	}

	exams, err := s.medicalRepo.ListForLatestPerEmployee(ctx, terminals, nFrom, nTo)
	if err != nil {
		return 0, 0, err
	}

	latest := latestExamPerEmployee(exams)
	for _, ex := range latest {
		if medical.NormalizeResult(ex.Result) == medical.ResultPassed {
			esmoOK++
		} else {
			esmoFail++
		}
	}
	return esmoOK, esmoFail, nil
}

// InsideMine implements report.Service. An employee is on site when their
// last turnstile entry is more recent than their last exit. Entries older
// than 24 hours are stale (missed exits) and are not shown as present.
func (s *ReportServiceImpl) InsideMine(ctx context.Context) ([]report.InsideMineItem, error) {
	pairs, err := s.eventRepo.LastDirectionalByEmployee(ctx, event.TypeTurnstileIn, event.TypeTurnstileOut)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-24 * time.Hour)
	inside := make(map[int64]*time.Time)
	for _, p := range pairs {
		if p.LastIn == nil || p.LastIn.Before(cutoff) {
			continue
		}
		if p.LastOut == nil || p.LastIn.After(*p.LastOut) {
			inside[p.EmployeeID] = p.LastIn
		}
	}

	employees, err := resolveEmployees(ctx, s.employeeRepo, inside)
	if err != nil {
		return nil, err
	}

	result := make([]report.InsideMineItem, 0, len(inside))
	for id, lastIn := range inside {
		emp := employees[id]
		result = append(result, report.InsideMineItem{
			EmployeeID: id,
			EmployeeNo: emp.EmployeeNo,
			FullName:   emp.FullName(),
			LastIn:     lastIn,
		})
	}
	sortByTimeDesc(result, func(it report.InsideMineItem) *time.Time { return it.LastIn })
	return result, nil
}

// ToolDebts implements report.Service. Same shape as InsideMine but over the
// tool room events: a take without a later return is a debt.
func (s *ReportServiceImpl) ToolDebts(ctx context.Context, day *time.Time) ([]report.ToolDebtItem, error) {
	pairs, err := s.eventRepo.LastDirectionalByEmployee(ctx, event.TypeToolTake, event.TypeToolReturn)
	if err != nil {
		return nil, err
	}

	var dayStart, dayEnd time.Time
	if day != nil {
		dayStart, dayEnd = timeutil.LocalDayBounds(*day)
	}

	debts := make(map[int64]*time.Time)
	for _, p := range pairs {
		if p.LastIn == nil {
			continue
		}
		if day != nil && (p.LastIn.Before(dayStart) || !p.LastIn.Before(dayEnd)) {
			continue
		}
		if p.LastOut == nil || p.LastIn.After(*p.LastOut) {
			debts[p.EmployeeID] = p.LastIn
		}
	}

	employees, err := resolveEmployees(ctx, s.employeeRepo, debts)
	if err != nil {
		return nil, err
	}

	result := make([]report.ToolDebtItem, 0, len(debts))
	for id, lastTake := range debts {
		emp := employees[id]
		result = append(result, report.ToolDebtItem{
			EmployeeID: id,
			EmployeeNo: emp.EmployeeNo,
			FullName:   emp.FullName(),
			LastTake:   lastTake,
		})
	}
	sortByTimeDesc(result, func(it report.ToolDebtItem) *time.Time { return it.LastTake })
	return result, nil
}

// DailyMineSummary implements report.Service. Folds the local day's turnstile
// events per employee: the device host lists override the reported direction
// for lanes known to be wired backwards, last in/out and inside state follow
// the corrected directions.
func (s *ReportServiceImpl) DailyMineSummary(ctx context.Context, day time.Time) ([]report.DailySummaryRow, error) {
	dayStart, dayEnd := timeutil.LocalDayBounds(day)

	events, err := s.eventRepo.ListTurnstile(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	type acc struct {
		lastIn   *time.Time
		lastOut  *time.Time
		isInside bool
		entered  bool
		exited   bool
	}

	byEmployee := make(map[int64]*acc)
	order := make([]int64, 0)

	for _, ev := range events {
		a := byEmployee[ev.EmployeeID]
		if a == nil {
			a = &acc{}
			byEmployee[ev.EmployeeID] = a
			order = append(order, ev.EmployeeID)
		}

		in := ev.EventType == event.TypeTurnstileIn
		if _, ok := s.inHosts[ev.DeviceHost]; ok {
			in = true
		} else if _, ok := s.outHosts[ev.DeviceHost]; ok {
			in = false
		}

		ts := ev.EventTS
		if in {
			a.lastIn = &ts
			a.entered = true
			a.isInside = true
		} else {
			a.lastOut = &ts
			a.exited = true
			a.isInside = false
		}
	}

	employees, err := resolveEmployees(ctx, s.employeeRepo, byEmployee)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]report.DailySummaryRow, 0, len(order))
	for _, id := range order {
		a := byEmployee[id]
		emp := employees[id]

		row := report.DailySummaryRow{
			EmployeeID:   id,
			EmployeeNo:   emp.EmployeeNo,
			FullName:     emp.FullName(),
			LastIn:       a.lastIn,
			IsInside:     a.isInside,
			EnteredToday: a.entered,
			ExitedToday:  a.exited,
		}
		// The exit timestamp belongs to an earlier visit when the employee is
		// back inside; showing it would read as "left after entering".
		if !a.isInside {
			row.LastOut = a.lastOut
		}
		row.TotalMinutes = totalMinutes(a.lastIn, a.lastOut, a.isInside, now, dayEnd)
		result = append(result, row)
	}
	return result, nil
}

// totalMinutes computes presence for one row. Inside: from last_in to now,
// clamped to the end of the day. Outside: last_in to last_out when positive.
// Truncated, never negative.
func totalMinutes(lastIn, lastOut *time.Time, isInside bool, now, dayEnd time.Time) int {
	if lastIn == nil {
		return 0
	}

	var until time.Time
	if isInside {
		until = now
		if until.After(dayEnd) {
			until = dayEnd
		}
	} else {
		if lastOut == nil {
			return 0
		}
		until = *lastOut
	}

	minutes := int(until.Sub(*lastIn) / time.Minute)
	if minutes < 0 {
		return 0
	}
	return minutes
}

// BlockedAttempts implements report.Service.
func (s *ReportServiceImpl) BlockedAttempts(ctx context.Context, day *time.Time, limit int) ([]report.BlockedAttempt, error) {
	filter := rejectedFilter(day)
	filter.Limit = limit

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]report.BlockedAttempt, 0, len(events))
	for _, ev := range events {
		result = append(result, report.BlockedAttempt{
			ID:           ev.ID,
			EmployeeID:   ev.EmployeeID,
			DeviceID:     ev.DeviceID,
			EventType:    string(ev.EventType),
			EventTS:      ev.EventTS,
			RawID:        ev.RawID,
			RejectReason: ev.RejectReason,
		})
	}
	return result, nil
}

// BlockedAttemptsCount implements report.Service.
func (s *ReportServiceImpl) BlockedAttemptsCount(ctx context.Context, day time.Time) (int64, error) {
	return s.eventRepo.Count(ctx, rejectedFilter(&day))
}

func rejectedFilter(day *time.Time) event.Filter {
	rejected := event.StatusRejected
	filter := event.Filter{Status: &rejected}
	if day != nil {
		from, to := timeutil.LocalDayBounds(*day)
		filter.DateFrom = &from
		filter.DateTo = &to
	}
	return filter
}

// EsmoSummary implements report.Service: distinct employees with an accepted
// ESMO_OK on the given local day.
func (s *ReportServiceImpl) EsmoSummary(ctx context.Context, day time.Time) (int64, error) {
	from, to := timeutil.LocalDayBounds(day)
	return s.eventRepo.CountDistinctEmployees(ctx, event.TypeEsmoOK, from, to)
}

// EsmoSummary24h implements report.Service: each employee's most recent exam
// of the local day, bucketed. Exam timestamps on equal wall-clock seconds are
// broken by result rank so a pass is never hidden behind a simultaneous fail.
func (s *ReportServiceImpl) EsmoSummary24h(ctx context.Context, day time.Time) (report.EsmoSummary, error) {
	terminals, err := s.esmoTerminalNames(ctx)
	if err != nil {
		return report.EsmoSummary{}, err
	}

	from, to := localNaiveDayBounds(day)
	exams, err := s.medicalRepo.ListForLatestPerEmployee(ctx, terminals, &from, &to)
	if err != nil {
		return report.EsmoSummary{}, err
	}

	latest := latestExamPerEmployee(exams)

	var summary report.EsmoSummary
	for _, ex := range latest {
		summary.Total++
		switch medical.NormalizeResult(ex.Result) {
		case medical.ResultPassed:
			summary.Passed++
		case medical.ResultFailed:
			summary.Failed++
		default:
			summary.Review++
		}
	}
	return summary, nil
}

// Dashboard implements report.Service. The four blocks are independent reads,
// fetched concurrently.
func (s *ReportServiceImpl) Dashboard(ctx context.Context) (report.Dashboard, error) {
	today := s.now()
	from, to := timeutil.LocalDayBounds(today)

	var dash report.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.Summary(gctx, &from, &to)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		dash.Summary = summary
		return nil
	})
	g.Go(func() error {
		inside, err := s.InsideMine(gctx)
		if err != nil {
			return fmt.Errorf("inside mine: %w", err)
		}
		dash.InsideCount = int64(len(inside))
		return nil
	})
	g.Go(func() error {
		esmo, err := s.EsmoSummary24h(gctx, today)
		if err != nil {
			return fmt.Errorf("esmo summary: %w", err)
		}
		dash.Esmo = esmo
		return nil
	})
	g.Go(func() error {
		blocked, err := s.BlockedAttemptsCount(gctx, today)
		if err != nil {
			return fmt.Errorf("blocked count: %w", err)
		}
		dash.BlockedToday = blocked
		return nil
	})

	if err := g.Wait(); err != nil {
		return report.Dashboard{}, err
	}
	return dash, nil
}

func (s *ReportServiceImpl) esmoTerminalNames(ctx context.Context) ([]string, error) {
	devices, err := s.deviceRepo.ListByType(ctx, device.TypeEsmo)
	if err != nil {
		return nil, fmt.Errorf("failed to list esmo devices: %w", err)
	}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	return names, nil
}

// resolveEmployees loads employee rows for the keys of any per-employee map.
func resolveEmployees[V any](ctx context.Context, repo employee.Repository, byID map[int64]V) (map[int64]employee.Employee, error) {
	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	employees, err := repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employees: %w", err)
	}

	result := make(map[int64]employee.Employee, len(employees))
	for _, emp := range employees {
		result[emp.ID] = emp
	}
	return result, nil
}

func sortByTimeDesc[T any](items []T, ts func(T) *time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := ts(items[i]), ts(items[j])
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}

// localNaiveDayBounds mirrors timeutil.LocalDayBounds but produces wall-clock
// times for comparison against the exam table's zone-less timestamps.
func localNaiveDayBounds(day time.Time) (time.Time, time.Time) {
	d := day.In(timeutil.FacilityZone)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// naiveWall restates an instant as its facility wall-clock reading, for
// comparing against zone-less exam timestamps.
func naiveWall(t time.Time) time.Time {
	d := t.In(timeutil.FacilityZone)
	return time.Date(d.Year(), d.Month(), d.Day(), d.Hour(), d.Minute(), d.Second(), 0, time.UTC)
}

// latestExamPerEmployee keeps each employee's newest exam from a list already
// ordered newest first. Ties on the exact same wall-clock second are broken
// by result rank so a pass is never hidden behind a simultaneous fail.
func latestExamPerEmployee(exams []medical.Exam) map[int64]medical.Exam {
	latest := make(map[int64]medical.Exam)
	for _, ex := range exams {
		prev, ok := latest[ex.EmployeeID]
		if !ok {
			latest[ex.EmployeeID] = ex
			continue
		}
		if ex.Timestamp.Equal(prev.Timestamp) && medical.ResultRank(ex.Result) > medical.ResultRank(prev.Result) {
			latest[ex.EmployeeID] = ex
		}
	}
	return latest
}
