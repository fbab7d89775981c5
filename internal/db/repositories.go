package db

import "gorm.io/gorm"

type Repositories struct {
	Users         *UserRepository
	Habits        *HabitRepository
	Goals         *GoalRepository
	Tasks         *TaskRepository
	FocusSessions *FocusSessionRepository
	Achievements  *AchievementRepository
	DreamProfiles *DreamProfileRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Habits:        NewHabitRepository(database),
		Goals:         NewGoalRepository(database),
		Tasks:         NewTaskRepository(database),
		FocusSessions: NewFocusSessionRepository(database),
		Achievements:  NewAchievementRepository(database),
		DreamProfiles: NewDreamProfileRepository(database),
	}
}
