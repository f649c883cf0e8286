package ecs_test

import "github.com/plus3/shelfmaze/ecs"

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Shelf struct {
	Col, Row int
}

type Page struct {
	Number int
}

type Book struct {
	ExpiresAt float64
}

type Tag string

type Clock struct {
	Elapsed float64
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Shelf](registry)
	ecs.RegisterComponent[Page](registry)
	ecs.RegisterComponent[Book](registry)
	ecs.RegisterComponent[Tag](registry)
	return registry
}
