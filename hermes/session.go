package hermes

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/lunagic/hermes/hermesservices/queue"
	"github.com/lunagic/hermes/hermesservices/spreadsheet"
	"github.com/lunagic/hermes/hermesservices/storage"
	"github.com/lunagic/hermes/hermestools"
)

var ErrWorkbookOpen = errors.New("a workbook is already open")

// Session holds the state of one scrape: the open workbook and where new
// vehicles go.
type Session struct {
	store       *VehicleStore
	workbookDir string
	workbook    *spreadsheet.Workbook
	storage     storage.Driver
	queue       *queue.Queue[Vehicle]
	logger      *slog.Logger
	published   []string
}

type SessionConfigFunc func(session *Session) error

func WithSessionLogger(logger *slog.Logger) SessionConfigFunc {
	return func(session *Session) error {
		session.logger = logger
		return nil
	}
}

// WithPublisher copies each finished workbook to the storage driver.
func WithPublisher(driver storage.Driver) SessionConfigFunc {
	return func(session *Session) error {
		session.storage = driver
		return nil
	}
}

// WithVehicleQueue publishes every newly stored vehicle.
func WithVehicleQueue(q queue.Queue[Vehicle]) SessionConfigFunc {
	return func(session *Session) error {
		session.queue = &q
		return nil
	}
}

func NewSession(store *VehicleStore, workbookDir string, configFuncs ...SessionConfigFunc) (*Session, error) {
	session := &Session{
		store:       store,
		workbookDir: workbookDir,
		logger:      slog.Default(),
		published:   []string{},
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(session); err != nil {
			return nil, err
		}
	}

	return session, nil
}

// OpenBatch opens the batch workbook in append mode.
func (session *Session) OpenBatch(batch Batch) (string, error) {
	if session.workbook != nil {
		return "", ErrWorkbookOpen
	}

	path := filepath.Join(session.workbookDir, batch.WorkbookName())

	workbook, err := spreadsheet.Open(path, VehicleTitles)
	if err != nil {
		return "", err
	}

	session.workbook = workbook

	return path, nil
}

// StoreVehicles adds the vehicles and mirrors the new ones into the
// workbook and queue. The workbook is saved when anything was added.
func (session *Session) StoreVehicles(ctx context.Context, vehicles []Vehicle) (int, error) {
	if session.workbook == nil {
		return 0, spreadsheet.ErrClosed
	}

	added := []Vehicle{}
	for _, vehicle := range vehicles {
		isNew, err := session.store.Add(ctx, vehicle)
		if err != nil {
			return len(added), err
		}

		if isNew {
			added = append(added, vehicle)
		}
	}

	if len(added) == 0 {
		return 0, nil
	}

	for _, row := range hermestools.Map(added, Vehicle.Row) {
		if err := session.workbook.Write(row); err != nil {
			return len(added), err
		}
	}

	if err := session.workbook.Save(); err != nil {
		return len(added), err
	}

	if session.queue != nil {
		for _, vehicle := range added {
			if err := session.queue.Publish(ctx, vehicle); err != nil {
				return len(added), err
			}
		}
	}

	return len(added), nil
}

// CloseBatch closes the workbook and, when publish is set and a storage
// driver is configured, copies it there.
func (session *Session) CloseBatch(ctx context.Context, publish bool) error {
	if session.workbook == nil {
		return nil
	}

	workbook := session.workbook
	session.workbook = nil

	if err := workbook.Close(); err != nil {
		return err
	}

	// Nothing beyond the title row was ever saved
	if !publish || session.storage == nil || workbook.Rows() <= 1 {
		return nil
	}

	location, err := storage.PublishFile(ctx, session.storage, workbook.Path())
	if err != nil {
		return err
	}

	session.published = append(session.published, location)
	session.logger.Info("Workbook Published",
		"workbook", workbook.Path(),
		"location", location,
	)

	return nil
}

func (session *Session) Published() []string {
	return session.published
}
