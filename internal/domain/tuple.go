package domain

import "encoding/json"

// marshalTuple serializa campos como arreglo JSON de orden fijo. El orden es
// contrato de compatibilidad con los clientes existentes, no un detalle.
func marshalTuple(fields ...any) ([]byte, error) {
	return json.Marshal(fields)
}
