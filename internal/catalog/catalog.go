package catalog

import "errors"

// Category distinguishes the two product lines.
type Category string

const (
	CategoryAutomotive Category = "AUTOMOTIVE"
	CategoryLeasing    Category = "LEASING"
)

// Package is an immutable catalog entry. Price is in minor currency units
// (MXN cents), which is also the unit the payment gateway reports.
type Package struct {
	ID          string   `json:"id" mapstructure:"id"`
	Category    Category `json:"category" mapstructure:"category"`
	Name        string   `json:"name" mapstructure:"name"`
	Price       int64    `json:"price" mapstructure:"price"`
	Description string   `json:"description" mapstructure:"description"`
	Features    []string `json:"features" mapstructure:"features"`
	Recommended bool     `json:"recommended,omitempty" mapstructure:"recommended"`

	// Hidden packages are purchasable (they have a price and requirements)
	// but excluded from the public listing. Used by the end-to-end test tier.
	Hidden bool `json:"hidden,omitempty" mapstructure:"hidden"`
}

var ErrPackageNotFound = errors.New("package_not_found")

func defaultPackages() []Package {
	return []Package{
		{
			ID:          "auto-1",
			Category:    CategoryAutomotive,
			Name:        "Historial Automotriz",
			Price:       49900,
			Description: "Reporte informativo de estatus general del vehículo.",
			Features: []string{
				"Consulta de historial especializado",
				"Validación de créditos activos",
				"Identificación de empeños",
				"Reporte de robo y choques",
				"Kilometraje reportado",
			},
		},
		{
			ID:          "auto-2",
			Category:    CategoryAutomotive,
			Name:        "Revisión Documental",
			Price:       129900,
			Description: "Validación técnica de documentos y coherencia legal.",
			Features: []string{
				"Todo lo de Historial Automotriz",
				"Validación de factura original",
				"Verificación de tarjeta de circulación",
				"Validación de cadena de propiedad",
				"Score de riesgo automotriz (0-1000)",
			},
			Recommended: true,
		},
		{
			ID:          "auto-3",
			Category:    CategoryAutomotive,
			Name:        "Análisis Integral",
			Price:       199900,
			Description: "Máxima seguridad con validación de vendedor y precios.",
			Features: []string{
				"Todo lo de Revisión Documental",
				"Consulta a bases de subastas",
				"Verificación de número de motor",
				"Validación de identidad del vendedor",
				"Estimación de precio óptimo de compra",
			},
		},
		{
			ID:          "lease-1",
			Category:    CategoryLeasing,
			Name:        "Análisis de Arrendatario",
			Price:       89900,
			Description: "Validación profesional del inquilino.",
			Features: []string{
				"Validación de identidad (INE/Pasaporte)",
				"Consulta RENAPO, INE, RNP, IMSS",
				"Análisis forense de documentos digitales",
				"Consulta de Buró de Crédito (autogestionado)",
				"Verificación de referencias",
			},
		},
		{
			ID:          "lease-2",
			Category:    CategoryLeasing,
			Name:        "Arrendatario + Aval",
			Price:       179900,
			Description: "Protección estándar para contratos con aval.",
			Features: []string{
				"Todo lo del Paquete Básico",
				"Análisis completo del arrendatario",
				"Análisis completo del aval",
				"Reporte consolidado",
				"Recomendación técnica conjunta",
			},
			Recommended: true,
		},
		{
			ID:          "lease-3",
			Category:    CategoryLeasing,
			Name:        "Suite Premium",
			Price:       299900,
			Description: "Cobertura total: Inquilino, Aval y Coobligado.",
			Features: []string{
				"Análisis completo del arrendatario",
				"Análisis completo del aval",
				"Análisis completo del coobligado",
				"Evaluación comparativa de perfiles",
				"Entrega prioritaria (72h)",
			},
		},
		{
			ID:          "test-pkg",
			Category:    CategoryAutomotive,
			Name:        "Paquete de Prueba",
			Price:       1000,
			Description: "Paquete interno para pruebas end-to-end.",
			Hidden:      true,
		},
	}
}
