package services

import (
	"context"

	"github.com/kwheeler/garage/internal/models"
)

// PredefinedTags is the built-in tag catalog; anything outside it is a custom
// tag and remembered in the custom-tag list.
func PredefinedTags() []string {
	return []string{"Engine", "Oils", "Filters", "Tires", "Brakes", "Electrical", "Cooling", "Transmission", "Body"}
}

func defaultTasks() []models.MaintenanceTask {
	return []models.MaintenanceTask{
		{
			ID:               "seed-oil-change",
			Title:            "Engine oil and filter change",
			Description:      "Replace engine oil and the oil filter.",
			Kind:             models.KindDistanceBased,
			DistanceInterval: 10000,
			Tags:             []string{"Engine", "Oils", "Filters"},
			Subtasks:         []string{"Drain old oil", "Replace oil filter", "Refill with manufacturer-spec oil", "Check for leaks"},
			IsRecurring:      true,
		},
		{
			ID:               "seed-tire-rotation",
			Title:            "Tire rotation",
			Kind:             models.KindDistanceBased,
			DistanceInterval: 10000,
			Tags:             []string{"Tires"},
			IsRecurring:      true,
		},
		{
			ID:          "seed-tire-pressure",
			Title:       "Tire pressure check",
			Kind:        models.KindTimeBased,
			Interval:    "monthly",
			Tags:        []string{"Tires"},
			IsRecurring: true,
		},
		{
			ID:          "seed-engine-air-filter",
			Title:       "Engine air filter",
			Kind:        models.KindTimeBased,
			Interval:    "annual",
			Tags:        []string{"Engine", "Filters"},
			IsRecurring: true,
		},
		{
			ID:          "seed-cabin-filter",
			Title:       "Cabin air filter",
			Kind:        models.KindTimeBased,
			Interval:    "annual",
			Tags:        []string{"Filters"},
			IsRecurring: true,
		},
		{
			ID:          "seed-brake-inspection",
			Title:       "Brake pad and disc inspection",
			Kind:        models.KindTimeBased,
			Interval:    "semiannual",
			Tags:        []string{"Brakes"},
			Subtasks:    []string{"Measure pad thickness", "Check disc wear", "Inspect brake lines"},
			IsRecurring: true,
		},
		{
			ID:          "seed-brake-fluid",
			Title:       "Brake fluid replacement",
			Kind:        models.KindTimeBased,
			Interval:    "biennial",
			Tags:        []string{"Brakes", "Oils"},
			IsRecurring: true,
		},
		{
			ID:          "seed-coolant",
			Title:       "Coolant flush",
			Kind:        models.KindTimeBased,
			Interval:    "triennial",
			Tags:        []string{"Cooling"},
			IsRecurring: true,
		},
		{
			ID:               "seed-spark-plugs",
			Title:            "Spark plug replacement",
			Kind:             models.KindDistanceBased,
			DistanceInterval: 40000,
			Tags:             []string{"Engine", "Electrical"},
			IsRecurring:      true,
		},
		{
			ID:               "seed-transmission-fluid",
			Title:            "Transmission fluid change",
			Kind:             models.KindDistanceBased,
			DistanceInterval: 60000,
			Tags:             []string{"Transmission", "Oils"},
			IsRecurring:      true,
		},
		{
			ID:          "seed-wiper-blades",
			Title:       "Wiper blade replacement",
			Kind:        models.KindTimeBased,
			Interval:    "semiannual",
			Tags:        []string{"Body"},
			IsRecurring: true,
		},
		{
			ID:          "seed-battery-check",
			Title:       "Battery health check",
			Kind:        models.KindTimeBased,
			Interval:    "semiannual",
			Tags:        []string{"Electrical"},
			IsRecurring: true,
		},
	}
}

// SeedDefaults inserts the built-in task set, skipping any id already present
// so re-seeding never clobbers recorded history. Returns how many tasks were
// added.
func (service *TaskService) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := service.repository.List(ctx)
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(existing))
	for _, task := range existing {
		present[task.ID] = true
	}

	now := service.now()
	var missing []models.MaintenanceTask
	for _, task := range defaultTasks() {
		if present[task.ID] {
			continue
		}
		task.CreatedAt = now
		task.UpdatedAt = now
		missing = append(missing, task)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	if err := service.repository.Upsert(ctx, missing...); err != nil {
		return 0, err
	}
	return len(missing), nil
}
