package model

// All returns every table in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&PersonalAccessToken{},
		&Project{},
		&Task{},
		&Comment{},
		&File{},
		&Notification{},
		&Issue{},
		&Activity{},
	}
}
