package service

import (
	"time"

	"washman/backend/internal/dto"
	"washman/backend/internal/model"
	"washman/backend/internal/scheduling"
)

// ── 模型 → DTO 转换 ──

func toTaskResponse(t *model.ScheduledTask) dto.TaskResponse {
	resp := dto.TaskResponse{
		TaskID:          t.TaskID,
		CustomerID:      t.CustomerID,
		CustomerName:    t.CustomerName,
		Villa:           t.Villa,
		Day:             t.Day,
		AppointmentDate: t.AppointmentDate,
		Time:            t.Time,
		CarPlate:        t.CarPlate,
		WashType:        t.WashType,
		PackageType:     t.PackageType,
		WorkerID:        t.WorkerID,
		WorkerName:      t.WorkerName,
		IsLocked:        t.IsLocked,
	}
	if !t.ScheduleDate.IsZero() {
		resp.ScheduleDate = t.ScheduleDate.Format(time.RFC3339)
	}
	return resp
}

func toTaskResponses(tasks []model.ScheduledTask) []dto.TaskResponse {
	result := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, toTaskResponse(&tasks[i]))
	}
	return result
}

func toAppointmentBriefs(appts []scheduling.Appointment) []dto.AppointmentBrief {
	result := make([]dto.AppointmentBrief, 0, len(appts))
	for i := range appts {
		a := &appts[i]
		result = append(result, dto.AppointmentBrief{
			CustomerID:      a.CustomerID,
			CustomerName:    a.CustomerName,
			Villa:           a.Villa,
			Day:             a.Day,
			AppointmentDate: a.AppointmentDate(),
			Time:            a.Time,
			CarPlate:        a.CarPlate,
			WashType:        string(a.WashType),
		})
	}
	return result
}

func toConflictResponses(conflicts []scheduling.Conflict) []dto.ConflictResponse {
	result := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		result = append(result, dto.ConflictResponse{
			Kind:           string(c.Kind),
			SlotKey:        c.SlotKey,
			CustomerID:     c.CustomerID,
			CarPlate:       c.CarPlate,
			Worker:         c.Worker,
			KeptTaskID:     c.KeptTaskID,
			AffectedTaskID: c.AffectedTaskID,
			Message:        c.Message,
		})
	}
	return result
}

func toManualInputResponses(items []scheduling.ManualInput) []dto.ManualInputResponse {
	result := make([]dto.ManualInputResponse, 0, len(items))
	for _, m := range items {
		result = append(result, dto.ManualInputResponse{
			CustomerID:   m.CustomerID,
			CustomerName: m.CustomerName,
			Villa:        m.Villa,
			PackageType:  m.PackageType,
			LastWashDate: m.LastWashDate,
			Reason:       m.Reason,
		})
	}
	return result
}

func toHistoryResponse(h *model.WashHistory) dto.HistoryResponse {
	return dto.HistoryResponse{
		HistoryID:         h.HistoryID,
		CustomerID:        h.CustomerID,
		CarPlate:          h.CarPlate,
		WashDate:          h.WashDate,
		WashTypePerformed: h.WashTypePerformed,
		WorkerName:        h.WorkerName,
		Status:            h.Status,
	}
}
