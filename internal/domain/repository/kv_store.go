package repository

// KeyValueStore almacén clave-valor síncrono donde se guardan los borradores.
// Su único contrato es la durabilidad; no hay transacciones y gana la última escritura.
type KeyValueStore interface {
	// Get devuelve el valor y false si la clave no existe.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}
