package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrTiedGame            = errors.New("tied game cannot update ratings")
	ErrOutOfOrderGame      = errors.New("game is earlier than the last processed game")
	ErrInsufficientHistory = errors.New("not enough prior games to predict")
)
