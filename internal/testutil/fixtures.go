package testutil

import "github.com/roach88/filtertree/internal/field"

// PeopleFields is the field set shared by compiler and engine tests.
func PeopleFields() *field.Set {
	return field.NewSet(
		field.Definition{Key: "id", Title: "ID", Type: field.TypeNumber},
		field.Definition{Key: "name", Title: "Name", Type: field.TypeText},
		field.Definition{Key: "age", Title: "Age", Type: field.TypeNumber},
		field.Definition{Key: "email", Title: "Email", Type: field.TypeText},
		field.Definition{Key: "joined", Title: "Joined", Type: field.TypeDate},
		field.Definition{Key: "active", Title: "Active", Type: field.TypeBoolean},
		field.Definition{Key: "status", Title: "Status", Type: field.TypeSelect, Options: []field.Option{
			{Label: "Active", Value: "active"},
			{Label: "Pending", Value: "pending"},
			{Label: "Banned", Value: "banned"},
		}},
		field.Definition{Key: "address.city", Title: "City", Type: field.TypeText},
	)
}

// PeopleRecords returns fresh records matching PeopleFields. Dates are ISO
// strings so the same rows can be loaded into SQLite.
func PeopleRecords() []map[string]any {
	return []map[string]any{
		{"id": 1, "name": "Ann", "age": 17, "email": "ann@example.com", "joined": "2023-05-01", "active": true, "status": "pending", "address": map[string]any{"city": "Oslo"}},
		{"id": 2, "name": "Bo", "age": 42, "email": "bo@example.org", "joined": "2021-11-20", "active": false, "status": "active", "address": map[string]any{"city": "Bergen"}},
		{"id": 3, "name": "Cyrus", "age": 65, "email": "", "joined": "2019-02-14", "active": true, "status": "active", "address": map[string]any{"city": "Oslo"}},
		{"id": 4, "name": "Dee_Dee", "age": 30, "email": nil, "joined": "2024-08-09", "active": true, "status": "banned", "address": map[string]any{"city": "Tromsø"}},
		{"id": 5, "name": "eve", "age": 18, "email": "EVE@example.com", "joined": "2022-01-01", "active": false, "status": "pending", "address": map[string]any{"city": "Bergen"}},
	}
}
