package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered timetable ready to be downloaded.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the actor's weekly timetable.
type ExportService struct {
	store     entityStore
	renderers map[string]datasetRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(store entityStore, logger *zap.Logger) *ExportService {
	return &ExportService{
		store: store,
		renderers: map[string]datasetRenderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: defaultLogger(logger),
	}
}

var timetableHeaders = []string{"Day", "Start", "End", "Course Code", "Course", "Professor", "Room", "Type"}

// Timetable builds the dataset of visible slots ordered by weekday and start time.
func (s *ExportService) Timetable(ctx context.Context, actor *models.JWTClaims) (export.Dataset, error) {
	if err := requireActor(actor); err != nil {
		return export.Dataset{}, err
	}
	data := export.Dataset{Headers: timetableHeaders, Rows: [][]string{}}
	err := s.store.View(func(tx *repository.Tx) error {
		data.GeneratedAt = tx.Now()
		visible := visibleCourseIDs(tx, actor)
		slots := tx.TimeSlots(func(slot models.TimeSlot) bool {
			_, ok := visible[slot.CourseID]
			return ok
		})
		sortSlots(slots)
		for _, slot := range slots {
			course := visible[slot.CourseID]
			data.Rows = append(data.Rows, []string{
				string(slot.Day),
				models.Format12h(slot.StartTime),
				models.Format12h(slot.EndTime),
				course.Code,
				course.Name,
				course.Professor,
				slot.Room,
				string(slot.Type),
			})
		}
		return nil
	})
	if err != nil {
		return export.Dataset{}, storeError(err, "timetable unavailable")
	}
	data.Title = fmt.Sprintf("Weekly Timetable - %s", actor.Name)
	return data, nil
}

// Export renders the actor's timetable in the requested format (csv when empty).
func (s *ExportService) Export(ctx context.Context, format string, actor *models.JWTClaims) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	data, err := s.Timetable(ctx, actor)
	if err != nil {
		return nil, err
	}
	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	s.logger.Info("timetable exported", zap.String("user_id", actor.UserID), zap.String("format", format), zap.Int("rows", len(data.Rows)))
	return &ExportFile{
		Filename:    fmt.Sprintf("timetable-%s.%s", actor.UserID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        body,
	}, nil
}
