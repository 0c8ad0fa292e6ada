// Package models contains the GORM persistence models for the CRM tables.
//
// Domain entities carry no ORM tags. Each model here owns its table mapping
// and converts to and from its domain entity with ToDomain / FromDomain.
// Column types are chosen so the same models migrate on PostgreSQL and SQLite.
package models
