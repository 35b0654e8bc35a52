package wordpiece

import "fmt"

func errUnknownID(id uint32) error {
	return fmt.Errorf("wordpiece: unknown token id %d", id)
}
