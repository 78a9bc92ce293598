package engine

import (
	"strconv"
	"strings"

	"github.com/shaiso/Cascade/internal/domain"
)

// RefMarker — маркер ссылки на данные состояния в input-спецификациях.
const RefMarker = "$"

// ResolveInputs разрешает объявленные входы узла против состояния запуска.
//
// scope — ID контейнера (loop/switch) для подузлов, пустая строка для
// top-level узлов.
func ResolveInputs(def *domain.NodeDef, st *State, scope string) map[string]any {
	inputs := make(map[string]any, len(def.Inputs))
	for key, spec := range def.Inputs {
		inputs[key] = Resolve(spec, st, scope)
	}
	return inputs
}

// Resolve разрешает одну input-спецификацию.
//
// Правила (применяются рекурсивно):
//   - строка "$a.b[1].c" — ссылка на состояние, см. resolveRef;
//   - map/list — разрешаются поэлементно с сохранением структуры,
//     литеральные элементы проходят без изменений;
//   - всё остальное — литерал, возвращается как есть.
//
// Функция чистая: без побочных эффектов. Некорректные пути деградируют
// к nil ("unset") и никогда не прерывают запуск.
func Resolve(spec any, st *State, scope string) any {
	switch t := spec.(type) {
	case string:
		if strings.HasPrefix(t, RefMarker) {
			return resolveRef(t, st, scope)
		}
		return t

	case map[string]any:
		resolved := make(map[string]any, len(t))
		for k, v := range t {
			resolved[k] = Resolve(v, st, scope)
		}
		return resolved

	case []any:
		resolved := make([]any, len(t))
		for i, v := range t {
			resolved[i] = Resolve(v, st, scope)
		}
		return resolved

	default:
		return spec
	}
}

// resolveRef разрешает ссылку вида "$source.seg1.seg2[3]".
//
// Первый сегмент — ключ состояния. Если ключ не найден, поиск
// повторяется по "scope.source" (для подузлов внутри контейнера),
// затем по составному ключу "source.seg1" (записи подузлов и
// синтетический счётчик итераций лежат под ключами с точкой).
// Отсутствие ключа даёт nil.
//
// Голая ссылка "$source" сводится по конвенции записи: поле "result",
// иначе "output", иначе запись целиком. Путь с сегментами сначала
// пробует поля самой записи; если первый сегмент там отсутствует,
// обход продолжается внутри сведённого значения записи.
func resolveRef(ref string, st *State, scope string) any {
	path := strings.TrimPrefix(ref, RefMarker)
	if path == "" {
		return nil
	}

	segments := strings.Split(path, ".")
	source := segments[0]
	rest := segments[1:]

	record, ok := st.Get(source)
	if !ok && scope != "" {
		record, ok = st.Get(scope + "." + source)
	}
	if !ok && len(segments) > 1 {
		record, ok = st.Get(source + "." + segments[1])
		if ok {
			rest = segments[2:]
		}
	}
	if !ok {
		return nil
	}

	if len(rest) == 0 {
		return recordValue(record)
	}

	// Путь может адресовать не поля самой записи, а её сведённое
	// значение: "$b.items[1]" при записи {"result": {"items": [...]}}.
	// Прямые поля записи имеют приоритет.
	firstKey := rest[0]
	if k, _, indexed := splitIndexSegment(rest[0]); indexed {
		firstKey = k
	}
	if _, direct := record[firstKey]; !direct {
		if inner, ok := recordValue(record).(map[string]any); ok {
			return walkPath(inner, rest)
		}
	}

	return walkPath(record, rest)
}

// recordValue применяет конвенцию выходной записи:
// result, иначе output, иначе запись целиком.
func recordValue(record map[string]any) any {
	if v, ok := record["result"]; ok {
		return v
	}
	if v, ok := record["output"]; ok {
		return v
	}
	return record
}

// walkPath проходит сегменты пути по вложенным map/list.
//
// Сегмент "key[idx]" сначала сужает по ключу, затем индексирует
// последовательность. Выход за границы, не-последовательность и
// не-mapping дают nil; оставшиеся сегменты при этом не рассматриваются.
func walkPath(start any, segments []string) any {
	value := start

	for _, seg := range segments {
		key, idx, indexed := splitIndexSegment(seg)

		if indexed {
			if key != "" {
				m, ok := value.(map[string]any)
				if !ok {
					return nil
				}
				value = m[key]
			}
			seq, ok := value.([]any)
			if !ok || idx < 0 || idx >= len(seq) {
				return nil
			}
			value = seq[idx]
			continue
		}

		m, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		value = m[seg]
	}

	return value
}

// splitIndexSegment разбирает сегмент формы "key[idx]".
// Возвращает indexed=false для обычных сегментов и некорректных индексов.
func splitIndexSegment(seg string) (key string, idx int, indexed bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 || !strings.HasSuffix(seg, "]") {
		return "", 0, false
	}

	idxText := seg[open+1 : len(seg)-1]
	n, err := strconv.Atoi(idxText)
	if err != nil || n < 0 {
		return "", 0, false
	}

	return seg[:open], n, true
}
