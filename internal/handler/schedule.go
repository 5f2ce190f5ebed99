// Package handler 提供HTTP请求处理器
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/paiban/shiftweek/internal/metrics"
	"github.com/paiban/shiftweek/internal/repository"
	"github.com/paiban/shiftweek/pkg/errors"
	"github.com/paiban/shiftweek/pkg/export"
	"github.com/paiban/shiftweek/pkg/importer"
	"github.com/paiban/shiftweek/pkg/logger"
	"github.com/paiban/shiftweek/pkg/model"
	"github.com/paiban/shiftweek/pkg/scheduler/solver"
	"github.com/paiban/shiftweek/pkg/stats"
	"github.com/paiban/shiftweek/pkg/validator"
)

// MaxEmployees 单次请求的员工数上限
const MaxEmployees = 1000

// ScheduleHandler 排班处理器，每个请求使用独立的名册和引擎
type ScheduleHandler struct {
	seed    int64
	timeout time.Duration
	archive repository.Transactor
}

// Option 处理器选项
type Option func(*ScheduleHandler)

// WithSeed 请求未指定种子时使用的默认种子，0 表示按时间生成
func WithSeed(seed int64) Option {
	return func(h *ScheduleHandler) {
		h.seed = seed
	}
}

// WithTimeout 单次排班超时
func WithTimeout(d time.Duration) Option {
	return func(h *ScheduleHandler) {
		h.timeout = d
	}
}

// WithArchive 生成后归档到数据库
func WithArchive(db repository.Transactor) Option {
	return func(h *ScheduleHandler) {
		h.archive = db
	}
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(opts ...Option) *ScheduleHandler {
	h := &ScheduleHandler{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	Seed      *int64            `json:"seed,omitempty"` // 未指定或为0时使用默认种子
	Employees []importer.Record `json:"employees"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	RunID        string             `json:"run_id"`
	Seed         int64              `json:"seed"`
	Success      bool               `json:"success"`
	Message      string             `json:"message,omitempty"`
	Schedule     []export.Row       `json:"schedule"`
	Understaffed []validator.Notice `json:"understaffed"`
	Unresolved   []model.Slot       `json:"unresolved,omitempty"`
	Statistics   *solver.Statistics `json:"statistics"`
	Summary      *stats.Summary     `json:"summary"`
	Warnings     []string           `json:"warnings,omitempty"`
	Archived     bool               `json:"archived"`
	Duration     string             `json:"duration"`
}

// Generate 生成排班
// 支持 JSON 请求体，或 text/plain 的文本偏好格式（种子通过 ?seed= 传入）
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, methodNotAllowed())
		return
	}

	imported, seed, appErr := h.parseGenerate(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	log := logger.WithContext(ctx)
	reporter := &validator.CollectReporter{}
	engine := solver.NewEngine(
		solver.WithSeed(seed),
		solver.WithReporter(reporter),
		solver.WithLogger(logger.NewSchedulerLoggerWith(*log)),
	)

	start := time.Now()
	result, err := engine.Run(ctx, imported.Roster)
	if err != nil {
		metrics.RecordScheduleRun(metrics.RunSummary{Source: "api", Status: "error", Duration: time.Since(start)})
		if ctx.Err() != nil {
			respondError(w, errors.Wrap(err, errors.CodeTimeout, "排班生成超时"))
			return
		}
		respondError(w, errors.As(err))
		return
	}

	ctx = context.WithValue(ctx, logger.RunIDKey, result.RunID.String())
	log = logger.WithContext(ctx)

	summary := stats.Analyze(imported.Roster)
	rows := export.Rows(imported.Roster)

	status := "staffed"
	if !result.Success {
		status = "understaffed"
	}
	metrics.RecordScheduleRun(metrics.RunSummary{
		Source:       "api",
		Status:       status,
		Duration:     result.Duration,
		Preference:   result.Statistics.PreferenceAssignments,
		FairFill:     result.Statistics.FairFillAssignments,
		Resolver:     result.Statistics.ResolverAssignments,
		Understaffed: len(reporter.Notices),
		FillRate:     summary.FillRate.InexactFloat64(),
	})

	resp := GenerateResponse{
		RunID:        result.RunID.String(),
		Seed:         result.Seed,
		Success:      result.Success,
		Message:      result.Message,
		Schedule:     rows,
		Understaffed: reporter.Notices,
		Unresolved:   result.Understaffed,
		Statistics:   result.Statistics,
		Summary:      summary,
		Warnings:     imported.Warnings,
		Duration:     result.Duration.String(),
	}
	if resp.Understaffed == nil {
		resp.Understaffed = []validator.Notice{}
	}

	if h.archive != nil {
		err := repository.Archive(ctx, h.archive, repository.NewRun(result, summary), repository.NewSlotRecords(rows))
		metrics.RecordArchive(err == nil)
		if err != nil {
			// 归档失败不影响本次排班结果
			log.Warn().Err(err).Msg("排班归档失败")
		} else {
			resp.Archived = true
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// parseGenerate 解析请求体并确定种子
func (h *ScheduleHandler) parseGenerate(r *http.Request) (*importer.Result, int64, *errors.AppError) {
	seed := h.seed

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		if s := r.URL.Query().Get("seed"); s != "" {
			parsed, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, 0, errors.InvalidInput("seed", "必须是整数")
			}
			seed = parsed
		}
		// 先读完请求体，超限时不把截断的最后一行当作格式错误
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, 0, decodeError(err)
		}
		result, err := importer.ParseText(bytes.NewReader(data))
		if err != nil {
			return nil, 0, errors.As(err)
		}
		if result.Roster.Len() == 0 {
			return nil, 0, errors.InvalidInput("employees", "员工列表不能为空")
		}
		return result, resolveSeed(seed), nil
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, 0, decodeError(err)
	}
	if appErr := validateGenerateRequest(&req); appErr != nil {
		return nil, 0, appErr
	}
	if req.Seed != nil && *req.Seed != 0 {
		seed = *req.Seed
	}

	result, err := importer.FromRecords(req.Employees)
	if err != nil {
		return nil, 0, errors.As(err)
	}
	return result, resolveSeed(seed), nil
}

// decodeError 请求体超限返回413，其余为输入错误
func decodeError(err error) *errors.AppError {
	if appErr := tooLarge(err); appErr != nil {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
}

func tooLarge(err error) *errors.AppError {
	var maxErr *http.MaxBytesError
	if !stderrors.As(err, &maxErr) {
		return nil
	}
	return errors.TooLarge(maxErr.Limit).WithCause(err)
}

// resolveSeed 0 表示按当前时间生成
func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// validateGenerateRequest 验证请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if len(req.Employees) == 0 {
		ve.Add("employees", "员工列表不能为空")
	}
	if len(req.Employees) > MaxEmployees {
		ve.Add("employees", "员工数超过上限 "+strconv.Itoa(MaxEmployees))
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// ValidateRequest 排班验证请求：给出每个员工已排的班次
type ValidateRequest struct {
	Employees []AssignedEmployee `json:"employees"`
}

// AssignedEmployee 员工及其已排班次
type AssignedEmployee struct {
	Name     string       `json:"name"`
	Assigned []model.Slot `json:"assigned"`
}

// Validate 验证外部给出的排班
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, methodNotAllowed())
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, decodeError(err))
		return
	}
	if len(req.Employees) == 0 {
		respondError(w, errors.InvalidInput("employees", "员工列表不能为空"))
		return
	}

	roster := model.NewRoster()
	for _, e := range req.Employees {
		emp := model.NewEmployee(e.Name)
		for _, slot := range e.Assigned {
			emp.Assign(slot)
		}
		if err := roster.Add(emp); err != nil {
			respondError(w, errors.As(err))
			return
		}
	}

	report := validator.NewValidator(&validator.CollectReporter{}).Validate(roster)
	respondJSON(w, http.StatusOK, report)
}

func methodNotAllowed() *errors.AppError {
	err := errors.New(errors.CodeInvalidInput, "仅支持POST方法")
	err.HTTPStatus = http.StatusMethodNotAllowed
	return err
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}
