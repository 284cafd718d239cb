package persistence

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// generateSequentialNumber issues the next number in a prefixed, zero-padded
// sequence such as APP-20260901-00001. It scans the highest number already
// issued under the prefix and increments, probing past collisions from
// concurrent issuance; the unique index on the column is the final arbiter.
func generateSequentialNumber(db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	var lastNumber string
	err := db.Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &lastNumber).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if lastNumber != "" {
		parts := strings.Split(lastNumber, "-")
		var num int64
		if _, parseErr := fmt.Sscanf(parts[len(parts)-1], "%d", &num); parseErr == nil {
			nextNum = num + 1
		}
	}

	number := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := numberExists(db, model, column, number)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			number = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = numberExists(db, model, column, number)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return number, nil
}

func numberExists(db *gorm.DB, model interface{}, column, number string) (bool, error) {
	var count int64
	if err := db.Model(model).Where(column+" = ?", number).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
