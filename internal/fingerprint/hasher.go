package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"sort"
	"strconv"
)

// Fingerprint — контент-хэш входов узла.
//
// Сравнение со значением из store решает, нужен ли пересчёт:
// совпадение означает, что семантически значимое содержимое входов
// не изменилось.
type Fingerprint string

// String возвращает строковое представление fingerprint.
func (f Fingerprint) String() string {
	return string(f)
}

// Compute вычисляет fingerprint входов узла.
//
// Свойства:
//   - детерминированность: одинаковые входы всегда дают одинаковый хэш
//   - независимость от порядка ключей: map-ы канонизируются сортировкой,
//     поэтому перестановка неупорядоченных коллекций хэш не меняет
//   - тип узла входит в хэш: одинаковые входы разных узлов различимы
//
// Inputs сначала нормализуются через JSON (map[string]any / слайсы /
// скаляры / любые сериализуемые структуры), затем кодируются канонически
// с length-prefix полей. Несериализуемый вход (каналы, функции, NaN)
// возвращает *ValidationError — это падение шага, не паника.
func Compute(nodeType string, inputs map[string]any) (Fingerprint, error) {
	h := sha256.New()
	writeField(h, 'n', []byte(nodeType))

	normalized, err := normalize(inputs)
	if err != nil {
		return "", NewValidationError(nodeType, "inputs are not hashable", err)
	}
	if err := writeValue(h, normalized); err != nil {
		return "", NewValidationError(nodeType, "inputs are not hashable", err)
	}

	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// normalize приводит произвольное значение к каноническому дереву
// (map[string]any / []any / string / float64 / bool / nil)
// через JSON round-trip.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}

	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("unmarshal input: %w", err)
	}
	return normalized, nil
}

// writeValue кодирует нормализованное значение в хэш.
// Каждое значение помечено тегом типа, поля length-prefixed,
// ключи map-ов отсортированы.
func writeValue(h hash.Hash, v any) error {
	switch val := v.(type) {
	case nil:
		writeField(h, 'z', nil)

	case bool:
		if val {
			writeField(h, 'b', []byte{1})
		} else {
			writeField(h, 'b', []byte{0})
		}

	case float64:
		writeField(h, 'f', []byte(strconv.FormatFloat(val, 'g', -1, 64)))

	case string:
		writeField(h, 's', []byte(val))

	case []any:
		writeField(h, 'a', []byte(strconv.Itoa(len(val))))
		for _, item := range val {
			if err := writeValue(h, item); err != nil {
				return err
			}
		}

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		writeField(h, 'm', []byte(strconv.Itoa(len(keys))))
		for _, k := range keys {
			writeField(h, 'k', []byte(k))
			if err := writeValue(h, val[k]); err != nil {
				return err
			}
		}

	default:
		// normalize гарантирует JSON-дерево; другой тип — ошибка нормализации
		return fmt.Errorf("unexpected value type %T", v)
	}

	return nil
}

// writeField пишет в хэш тег типа и length-prefixed данные,
// чтобы кодирование было однозначным.
func writeField(h hash.Hash, tag byte, data []byte) {
	var prefix [9]byte
	prefix[0] = tag
	binary.BigEndian.PutUint64(prefix[1:], uint64(len(data)))
	h.Write(prefix[:])
	h.Write(data)
}
