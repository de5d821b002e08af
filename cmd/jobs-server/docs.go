// Package docs provides OpenAPI documentation for the jobs server API
//
//	@title			Jobs Server API
//	@version		0.1
//	@description	Job listings for websites: front-end modules rendering job lists, readers,
//	@description	archives and menus, insert tags, JSON-LD, the sitemap and an admin API for
//	@description	managing archives and jobs.
//	@description
//	@description	The front-end endpoints are public. Protected archives are only shown to
//	@description	members whose bearer token carries a matching group. The admin endpoints
//	@description	require a bearer token of a back-end user.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HMAC signed JWT. Format: "Bearer {token}"
//
//	@tag.name	frontend
//	@tag.description	Front-end modules and insert tags
//
//	@tag.name	search
//	@tag.description	Sitemap and searchable pages
//
//	@tag.name	archives
//	@tag.description	Archive management
//
//	@tag.name	jobs
//	@tag.description	Job management
//
//	@tag.name	system
//	@tag.description	System health and version information
package main
