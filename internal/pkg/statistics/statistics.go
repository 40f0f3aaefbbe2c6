package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/cache"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/database"
)

const (
	CacheKeyApplications     = "statistics:user:%d:applications"
	CacheKeyDeploymentsDaily = "statistics:user:%d:deployments:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers            = "statistics:users:total"
	CacheExpiration          = 30 * time.Minute
)

// DashboardData holds the aggregates shown on the dashboard page
type DashboardData struct {
	TotalApplications int
	TodayDeployments  int
	OpenTodos         int
	OverdueTasks      int
	MinutesCoded      int
	StatusCounts      map[string]int64
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached aggregates are stale
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// ResetCacheUpdateTimer forces the next check to refresh the cache
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache refreshes the cached per-user aggregates
func UpdateStatisticsCache(userID uint) error {
	db := database.GetDB()

	var totalApps int64
	if err := db.Model(&models.Application{}).Where("user_id = ?", userID).Count(&totalApps).Error; err != nil {
		log.Printf("Error counting applications: %v", err)
		return err
	}

	var todayDeployments int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.Deployment{}).
		Joins("JOIN applications ON applications.id = deployments.application_id").
		Where("applications.user_id = ? AND deployments.deployed_at BETWEEN ? AND ?", userID, todayStart, todayEnd).
		Count(&todayDeployments).Error; err != nil {
		log.Printf("Error counting today's deployments: %v", err)
		return err
	}

	if err := cache.Set(fmt.Sprintf(CacheKeyApplications, userID), strconv.FormatInt(totalApps, 10), CacheExpiration); err != nil {
		log.Printf("Error caching application count: %v", err)
		return err
	}

	dailyKey := fmt.Sprintf(CacheKeyDeploymentsDaily, userID, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayDeployments, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's deployments: %v", err)
		return err
	}

	cacheUpdateMutex.Lock()
	lastCacheUpdate = time.Now()
	cacheUpdateMutex.Unlock()

	return nil
}

// GetTotalApplications returns the user's application count from cache or database
func GetTotalApplications(userID uint) int {
	key := fmt.Sprintf(CacheKeyApplications, userID)
	val, err := cache.Get(key)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.Application{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			log.Printf("Error counting applications: %v", err)
			return 0
		}

		if err := cache.Set(key, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching application count: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTodayDeployments returns the user's deployment count for today from cache or database
func GetTodayDeployments(userID uint) int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyDeploymentsDaily, userID, today)

	val, err := cache.Get(dailyKey)
	if err != nil {
		var count int64
		db := database.GetDB()
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		if err := db.Model(&models.Deployment{}).
			Joins("JOIN applications ON applications.id = deployments.application_id").
			Where("applications.user_id = ? AND deployments.deployed_at BETWEEN ? AND ?", userID, todayStart, todayEnd).
			Count(&count).Error; err != nil {
			log.Printf("Error counting today's deployments: %v", err)
			return 0
		}

		if err := cache.Set(dailyKey, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching today's deployments: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	val, err := cache.Get(CacheKeyUsers)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total users: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyUsers, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total users: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}
