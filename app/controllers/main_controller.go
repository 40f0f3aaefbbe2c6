package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/env"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/statistics"
)

// HandleStart renders the public landing page
func HandleStart(c *fiber.Ctx) error {
	if isLoggedIn(c) {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}

	return render(c, "index", fiber.Map{
		"Title":      "Cloud Tracker",
		"TotalUsers": statistics.GetTotalUsers(),
		"IsDev":      env.IsDev(),
	})
}

// HandleDashboard renders the per-user overview with aggregates and recent activity
func HandleDashboard(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	openTodos, err := repos.Todo.CountOpenByUserID(userID)
	if err != nil {
		log.Printf("dashboard: counting open todos failed: %v", err)
	}

	overdueTasks, err := repos.Maintenance.GetOverdue(userID)
	if err != nil {
		log.Printf("dashboard: loading overdue tasks failed: %v", err)
	}

	minutesCoded, err := repos.CodingSession.TotalMinutesByUserID(userID)
	if err != nil {
		log.Printf("dashboard: summing coding minutes failed: %v", err)
	}

	statusCounts, err := repos.Deployment.CountByStatus(userID)
	if err != nil {
		log.Printf("dashboard: counting deployment statuses failed: %v", err)
	}

	recentDeployments, err := repos.Deployment.GetRecentByUserID(userID, 10)
	if err != nil {
		log.Printf("dashboard: loading recent deployments failed: %v", err)
	}

	data := statistics.DashboardData{
		TotalApplications: statistics.GetTotalApplications(userID),
		TodayDeployments:  statistics.GetTodayDeployments(userID),
		OpenTodos:         int(openTodos),
		OverdueTasks:      len(overdueTasks),
		MinutesCoded:      int(minutesCoded),
		StatusCounts:      statusCounts,
	}

	return render(c, "dashboard", fiber.Map{
		"Title":             "Dashboard",
		"Stats":             data,
		"OverdueTasks":      overdueTasks,
		"RecentDeployments": recentDeployments,
	})
}
