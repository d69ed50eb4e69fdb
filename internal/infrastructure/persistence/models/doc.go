// Package models contains the GORM persistence models of the cash desk.
// Domain aggregates stay free of ORM tags; each model converts to and from
// its aggregate with ToDomain and *FromDomain.
package models
