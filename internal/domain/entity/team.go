package entity

import "time"

// Team equipo de ventas asignado a uno o más proyectos.
type Team struct {
	ID         string
	TenantID   string
	Name       string
	ProjectIDs []string
	MemberIDs  []string // orden de alta; decide los empates en la asignación
	CreatedAt  time.Time
}
