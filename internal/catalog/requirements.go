package catalog

// FieldSpec describes one form field required or offered by a package.
type FieldSpec struct {
	Name        string   `json:"name" mapstructure:"name"`
	Label       string   `json:"label" mapstructure:"label"`
	Type        string   `json:"type" mapstructure:"type"`
	Required    bool     `json:"required" mapstructure:"required"`
	Options     []string `json:"options,omitempty" mapstructure:"options"`
	Section     string   `json:"section,omitempty" mapstructure:"section"`
	Placeholder string   `json:"placeholder,omitempty" mapstructure:"placeholder"`
}

// DocumentSpec describes one document slot in the upload step.
type DocumentSpec struct {
	ID       string `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	Required bool   `json:"required" mapstructure:"required"`
	Section  string `json:"section,omitempty" mapstructure:"section"`
}

// RequirementSet is the per-package intake specification: which fields the
// form asks for and which documents the upload step collects. SkipUpload
// removes the upload step entirely; such a package must never receive files.
type RequirementSet struct {
	PackageID  string         `json:"id" mapstructure:"id"`
	Fields     []FieldSpec    `json:"fields" mapstructure:"fields"`
	Documents  []DocumentSpec `json:"documents" mapstructure:"documents"`
	SkipUpload bool           `json:"skipUpload,omitempty" mapstructure:"skipUpload"`
}

// Field section labels repeat constantly across tiers; keep them as consts
// so a rename stays consistent.
const (
	sectionVehicle   = "Datos del Vehículo"
	sectionDocs      = "Documentación"
	sectionTenant    = "Datos del Arrendatario"
	sectionGuarantor = "Datos del Aval"
	sectionCosigner  = "Datos del Coobligado"
)

// extraRequiredDocuments is the declarative cross-field rule table: for the
// named package the listed document ids are mandatory regardless of their
// own Required flag. Adding a package rule never touches validator code.
var extraRequiredDocuments = map[string][]string{
	// Top automotive tier cannot be analyzed without the seller's identity.
	"auto-3": {"id_vendedor_front", "id_vendedor_back"},
	// Premium leasing requires the co-signer's identity and address proof.
	"lease-3": {"co_id_front", "co_id_back", "co_domicilio"},
}

func defaultRequirements() map[string]RequirementSet {
	return map[string]RequirementSet{
		"auto-1": {
			PackageID: "auto-1",
			Fields: []FieldSpec{
				{Name: "vin", Label: "Número de Serie (VIN)", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "placas", Label: "Placas", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "marca", Label: "Marca", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "modelo", Label: "Modelo", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "anio", Label: "Año", Type: "number", Required: true, Section: sectionVehicle},
			},
			Documents:  nil,
			SkipUpload: true,
		},
		"auto-2": {
			PackageID: "auto-2",
			Fields: []FieldSpec{
				{Name: "vin", Label: "Número de Serie (VIN)", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "placas", Label: "Placas", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "marca", Label: "Marca", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "modelo", Label: "Modelo", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "anio", Label: "Año", Type: "number", Required: true, Section: sectionVehicle},
				{Name: "tipo_factura", Label: "Tipo de Factura", Type: "select", Required: true, Options: []string{"Factura de Origen", "Refactura", "Factura de Aseguradora"}, Section: sectionDocs},
				{Name: "propietario_actual", Label: "Nombre del Propietario Actual", Type: "text", Required: true, Section: sectionDocs},
			},
			Documents: []DocumentSpec{
				{ID: "factura_front", Name: "Factura Original / Refactura (Frente)", Required: true, Section: "Documentos Vehiculares"},
				{ID: "factura_back", Name: "Factura Original / Refactura (Reverso)", Required: true, Section: "Documentos Vehiculares"},
				{ID: "tarjeta_front", Name: "Tarjeta de Circulación (Frente)", Required: true, Section: "Documentos Vehiculares"},
				{ID: "tarjeta_back", Name: "Tarjeta de Circulación (Reverso)", Required: true, Section: "Documentos Vehiculares"},
			},
		},
		"auto-3": {
			PackageID: "auto-3",
			Fields: []FieldSpec{
				{Name: "vin", Label: "Número de Serie (VIN)", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "placas", Label: "Placas", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "marca", Label: "Marca", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "modelo", Label: "Modelo", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "anio", Label: "Año", Type: "number", Required: true, Section: sectionVehicle},
				{Name: "version", Label: "Versión (ej. XLE, Sport)", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "color", Label: "Color", Type: "text", Required: true, Section: sectionVehicle},
				{Name: "kilometraje", Label: "Kilometraje Actual", Type: "number", Required: true, Section: sectionVehicle},
				{Name: "tipo_factura", Label: "Tipo de Factura", Type: "select", Required: true, Options: []string{"Factura de Origen", "Refactura", "Factura de Aseguradora"}, Section: sectionDocs},
				{Name: "propietario_actual", Label: "Nombre del Propietario Actual", Type: "text", Required: true, Section: sectionDocs},
				{Name: "vendedor_nombre", Label: "Nombre del Vendedor", Type: "text", Required: true, Section: "Datos del Vendedor"},
				{Name: "vendedor_telefono", Label: "Teléfono del Vendedor", Type: "tel", Required: true, Section: "Datos del Vendedor"},
				{Name: "vendedor_email", Label: "Correo del Vendedor", Type: "email", Required: true, Section: "Datos del Vendedor"},
				{Name: "precio", Label: "Precio Solicitado", Type: "number", Required: true, Section: "Transacción"},
			},
			Documents: []DocumentSpec{
				{ID: "factura_front", Name: "Factura Original / Refactura (Frente)", Required: true, Section: "Factura Principal"},
				{ID: "factura_back", Name: "Factura Original / Refactura (Reverso/Endosos)", Required: true, Section: "Factura Principal"},
				{ID: "factura_2_front", Name: "Factura Adicional 1 (Frente)", Required: false, Section: "Facturas Adicionales"},
				{ID: "factura_2_back", Name: "Factura Adicional 1 (Reverso)", Required: false, Section: "Facturas Adicionales"},
				{ID: "factura_3_front", Name: "Factura Adicional 2 (Frente)", Required: false, Section: "Facturas Adicionales"},
				{ID: "factura_3_back", Name: "Factura Adicional 2 (Reverso)", Required: false, Section: "Facturas Adicionales"},
				{ID: "tarjeta_front", Name: "Tarjeta de Circulación (Frente)", Required: true, Section: "Documentos Vehiculares"},
				{ID: "tarjeta_back", Name: "Tarjeta de Circulación (Reverso)", Required: true, Section: "Documentos Vehiculares"},
				{ID: "id_vendedor_front", Name: "INE/ID Vendedor (Frente)", Required: true, Section: "Identidad Vendedor"},
				{ID: "id_vendedor_back", Name: "INE/ID Vendedor (Reverso)", Required: true, Section: "Identidad Vendedor"},
			},
		},
		"lease-1": {
			PackageID: "lease-1",
			Fields: []FieldSpec{
				{Name: "nombre", Label: "Nombre Completo", Type: "text", Required: true, Section: sectionTenant},
				{Name: "curp", Label: "CURP", Type: "text", Required: true, Section: sectionTenant},
				{Name: "rfc", Label: "RFC", Type: "text", Required: true, Section: sectionTenant},
				{Name: "telefono", Label: "Teléfono", Type: "tel", Required: true, Section: "Datos de Contacto"},
				{Name: "email", Label: "Correo Electrónico", Type: "email", Required: true, Section: "Datos de Contacto"},
				{Name: "domicilio", Label: "Domicilio Actual", Type: "text", Required: true, Section: "Datos de Contacto"},
				{Name: "ocupacion", Label: "Ocupación", Type: "text", Required: true, Section: "Datos Laborales"},
				{Name: "empresa", Label: "Empresa", Type: "text", Required: true, Section: "Datos Laborales"},
				{Name: "monto_renta", Label: "Monto de Renta", Type: "number", Required: true, Section: "Arrendamiento"},
			},
			Documents: []DocumentSpec{
				{ID: "id_oficial_front", Name: "Identificación Oficial (Arrendatario - Frente)", Required: true, Section: "Arrendatario"},
				{ID: "id_oficial_back", Name: "Identificación Oficial (Arrendatario - Reverso)", Required: true, Section: "Arrendatario"},
				{ID: "comp_domicilio", Name: "Comprobante de Domicilio (Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "edos_cuenta_m1", Name: "Estado de Cuenta (Mes 1)", Required: true, Section: "Solvencia Arrendatario"},
				{ID: "edos_cuenta_m2", Name: "Estado de Cuenta (Mes 2)", Required: true, Section: "Solvencia Arrendatario"},
				{ID: "edos_cuenta_m3", Name: "Estado de Cuenta (Mes 3)", Required: true, Section: "Solvencia Arrendatario"},
				{ID: "recibos_nomina", Name: "Recibos de Nómina (Solo si es asalariado)", Required: false, Section: "Solvencia Arrendatario"},
				{ID: "buro", Name: "Reporte de Buró de Crédito", Required: true, Section: "Historial Crediticio"},
			},
		},
		"lease-2": {
			PackageID: "lease-2",
			Fields: []FieldSpec{
				{Name: "nombre", Label: "Nombre Completo (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "curp", Label: "CURP (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "rfc", Label: "RFC (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "telefono", Label: "Teléfono (Arrendatario)", Type: "tel", Required: true, Section: sectionTenant},
				{Name: "email", Label: "Correo Electrónico (Arrendatario)", Type: "email", Required: true, Section: sectionTenant},
				{Name: "domicilio", Label: "Domicilio Actual (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "ocupacion", Label: "Ocupación (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "empresa", Label: "Empresa (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "monto_renta", Label: "Monto de Renta", Type: "number", Required: true, Section: "Arrendamiento"},
				{Name: "aval_nombre", Label: "Nombre Completo (Aval)", Type: "text", Required: true, Section: sectionGuarantor},
				{Name: "aval_curp", Label: "CURP (Aval)", Type: "text", Required: true, Section: sectionGuarantor},
				{Name: "aval_telefono", Label: "Teléfono (Aval)", Type: "tel", Required: true, Section: sectionGuarantor},
				{Name: "aval_email", Label: "Correo Electrónico (Aval)", Type: "email", Required: true, Section: sectionGuarantor},
				{Name: "aval_domicilio", Label: "Domicilio (Aval)", Type: "text", Required: true, Section: sectionGuarantor},
			},
			Documents: []DocumentSpec{
				{ID: "id_oficial_front", Name: "Identificación Oficial (Arrendatario - Frente)", Required: true, Section: "Arrendatario"},
				{ID: "id_oficial_back", Name: "Identificación Oficial (Arrendatario - Reverso)", Required: true, Section: "Arrendatario"},
				{ID: "comp_domicilio", Name: "Comprobante de Domicilio (Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "edos_cuenta_m1", Name: "Estado de Cuenta (Mes 1 - Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "edos_cuenta_m2", Name: "Estado de Cuenta (Mes 2 - Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "edos_cuenta_m3", Name: "Estado de Cuenta (Mes 3 - Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "recibos_nomina", Name: "Recibos de Nómina (Arrendatario - Opcional)", Required: false, Section: "Arrendatario"},
				{ID: "buro", Name: "Reporte de Buró de Crédito", Required: true, Section: "Arrendatario"},
				{ID: "aval_id_front", Name: "Identificación Oficial (Aval - Frente)", Required: true, Section: "Aval"},
				{ID: "aval_id_back", Name: "Identificación Oficial (Aval - Reverso)", Required: true, Section: "Aval"},
				{ID: "aval_domicilio", Name: "Comprobante de Domicilio (Aval)", Required: true, Section: "Aval"},
				{ID: "aval_edos", Name: "Estados de Cuenta (Aval - 3 meses)", Required: true, Section: "Aval"},
			},
		},
		"lease-3": {
			PackageID: "lease-3",
			Fields: []FieldSpec{
				{Name: "nombre", Label: "Nombre Completo (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "curp", Label: "CURP (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "rfc", Label: "RFC (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "telefono", Label: "Teléfono (Arrendatario)", Type: "tel", Required: true, Section: sectionTenant},
				{Name: "email", Label: "Correo Electrónico (Arrendatario)", Type: "email", Required: true, Section: sectionTenant},
				{Name: "domicilio", Label: "Domicilio Actual (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "ocupacion", Label: "Ocupación (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "empresa", Label: "Empresa (Arrendatario)", Type: "text", Required: true, Section: sectionTenant},
				{Name: "monto_renta", Label: "Monto de Renta", Type: "number", Required: true, Section: "Arrendamiento"},
				{Name: "aval_nombre", Label: "Nombre Completo (Aval)", Type: "text", Required: true, Section: sectionGuarantor},
				{Name: "aval_curp", Label: "CURP (Aval)", Type: "text", Required: true, Section: sectionGuarantor},
				{Name: "aval_telefono", Label: "Teléfono (Aval)", Type: "tel", Required: true, Section: sectionGuarantor},
				{Name: "aval_email", Label: "Correo Electrónico (Aval)", Type: "email", Required: true, Section: sectionGuarantor},
				{Name: "aval_domicilio", Label: "Domicilio (Aval)", Type: "text", Required: true, Section: sectionGuarantor},
				{Name: "co_nombre", Label: "Nombre Completo (Coobligado)", Type: "text", Required: true, Section: sectionCosigner},
				{Name: "co_curp", Label: "CURP (Coobligado)", Type: "text", Required: true, Section: sectionCosigner},
				{Name: "co_telefono", Label: "Teléfono (Coobligado)", Type: "tel", Required: true, Section: sectionCosigner},
				{Name: "co_email", Label: "Correo Electrónico (Coobligado)", Type: "email", Required: true, Section: sectionCosigner},
				{Name: "co_domicilio", Label: "Domicilio (Coobligado)", Type: "text", Required: true, Section: sectionCosigner},
			},
			Documents: []DocumentSpec{
				{ID: "id_oficial_front", Name: "Identificación Oficial (Arrendatario - Frente)", Required: true, Section: "Arrendatario"},
				{ID: "id_oficial_back", Name: "Identificación Oficial (Arrendatario - Reverso)", Required: true, Section: "Arrendatario"},
				{ID: "comp_domicilio", Name: "Comprobante de Domicilio (Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "edos_cuenta_m1", Name: "Estado de Cuenta (Mes 1 - Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "edos_cuenta_m2", Name: "Estado de Cuenta (Mes 2 - Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "edos_cuenta_m3", Name: "Estado de Cuenta (Mes 3 - Arrendatario)", Required: true, Section: "Arrendatario"},
				{ID: "recibos_nomina", Name: "Recibos de Nómina (Arrendatario - Opcional)", Required: false, Section: "Arrendatario"},
				{ID: "buro", Name: "Reporte de Buró de Crédito", Required: true, Section: "Arrendatario"},
				{ID: "aval_id_front", Name: "Identificación Oficial (Aval - Frente)", Required: true, Section: "Aval"},
				{ID: "aval_id_back", Name: "Identificación Oficial (Aval - Reverso)", Required: true, Section: "Aval"},
				{ID: "aval_domicilio", Name: "Comprobante de Domicilio (Aval)", Required: true, Section: "Aval"},
				{ID: "aval_edos", Name: "Estados de Cuenta (Aval - 3 meses)", Required: true, Section: "Aval"},
				{ID: "co_id_front", Name: "Identificación Oficial (Coobligado - Frente)", Required: true, Section: "Coobligado"},
				{ID: "co_id_back", Name: "Identificación Oficial (Coobligado - Reverso)", Required: true, Section: "Coobligado"},
				{ID: "co_domicilio", Name: "Comprobante de Domicilio (Coobligado)", Required: true, Section: "Coobligado"},
				{ID: "co_edos", Name: "Estados de Cuenta (Coobligado - 3 meses)", Required: true, Section: "Coobligado"},
			},
		},
		"test-pkg": {
			PackageID: "test-pkg",
			Fields: []FieldSpec{
				{Name: "prueba_campo", Label: "Campo de Prueba", Type: "text", Required: false, Section: "Prueba"},
			},
			Documents: []DocumentSpec{
				{ID: "doc_prueba", Name: "Documento de Prueba (PDF/Imagen)", Required: true, Section: "Prueba"},
			},
		},
	}
}
