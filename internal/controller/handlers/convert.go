package handlers

import (
	"driveplane/internal/drive"
	"driveplane/internal/store"
	"driveplane/pkg/api"

	"github.com/google/uuid"
)

func toProgress(p drive.Progress) api.Progress {
	return api.Progress{
		OriginalCompleted: p.OriginalCompleted,
		OriginalRequired:  p.OriginalRequired,
		ComboCompleted:    p.ComboCompleted,
		ComboTotal:        p.ComboTotal,
		AllCompleted:      p.AllCompleted,
		AllTotal:          p.AllTotal,
		Percent:           p.Percent,
	}
}

func toTask(t *store.TaskItem) api.TaskResponse {
	products := make([]api.ProductRef, 0, len(t.Products))
	for _, p := range t.Products {
		products = append(products, api.ProductRef{
			ProductID:  p.ProductID.String(),
			SlotIndex:  p.SlotIndex,
			Price:      p.Price,
			Commission: p.Commission,
		})
	}
	return api.TaskResponse{
		ID:               t.ID.String(),
		OrderInDrive:     t.OrderInDrive,
		Kind:             string(t.Kind),
		Status:           string(t.Status),
		Products:         products,
		ComboName:        t.ComboName,
		ComboDescription: t.ComboDescription,
		Attempts:         t.Attempts,
		PurchaseInFlight: t.PurchaseInFlight,
	}
}

func toSession(q *drive.Queue) api.SessionResponse {
	tasks := make([]api.TaskResponse, 0, q.Len())
	for i := range q.Items {
		tasks = append(tasks, toTask(&q.Items[i]))
	}
	resp := api.SessionResponse{
		ID:                    q.Session.ID.String(),
		UserID:                q.Session.UserID.String(),
		TierAtStart:           q.Session.TierAtStart,
		Status:                string(q.Session.Status),
		OriginalTasksRequired: q.Session.OriginalTasksRequired,
		Version:               q.Session.Version,
		Tasks:                 tasks,
		Progress:              toProgress(drive.ComputeProgress(q)),
		CreatedAt:             q.Session.CreatedAt,
	}
	if cur, ok := q.Current(); ok {
		id := cur.ID.String()
		resp.CurrentTaskID = &id
	}
	return resp
}

func toTier(c *store.TierConfig) api.TierResponse {
	return api.TierResponse{
		TierName:       c.TierName,
		QuantityLimit:  c.QuantityLimit,
		NumSingleTasks: c.NumSingleTasks,
		NumComboTasks:  c.NumComboTasks,
		MinPriceSingle: c.MinPriceSingle,
		MaxPriceSingle: c.MaxPriceSingle,
		MinPriceCombo:  c.MinPriceCombo,
		MaxPriceCombo:  c.MaxPriceCombo,
		CommissionRate: c.CommissionRate,
		IsActive:       c.IsActive,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toPreview(p *drive.Preview) api.PreviewResponse {
	entries := make([]api.PreviewEntry, 0, len(p.Entries))
	for _, e := range p.Entries {
		entry := api.PreviewEntry{
			Order:      e.Order,
			Kind:       string(e.Kind),
			Status:     string(e.Status),
			ProductIDs: uuidStrings(e.ProductIDs),
			Total:      e.Total,
			IsNew:      e.IsNew,
		}
		if e.TaskID != uuid.Nil {
			entry.TaskID = e.TaskID.String()
		}
		entries = append(entries, entry)
	}
	return api.PreviewResponse{
		SessionID:      p.SessionID.String(),
		Version:        p.Version,
		RequestedOrder: p.RequestedOrder,
		AssignedOrder:  p.AssignedOrder,
		ShiftedCount:   p.ShiftedCount,
		Entries:        entries,
		Progress:       toProgress(p.Progress),
		Warnings:       p.Warnings,
	}
}

func toRecord(r store.CompensationRecord) api.CompensationRecord {
	return api.CompensationRecord{
		ID:         r.ID,
		TaskItemID: r.TaskItemID.String(),
		Type:       string(r.Type),
		Amount:     r.Amount,
		Refund:     r.Refund,
		TierAtTime: r.TierAtTime,
		CreatedAt:  r.CreatedAt,
	}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
