package graph

import "fmt"

// NodeDef — объявление узла графа из конфигурации.
type NodeDef struct {
	// Type — тип производного артефакта (например, "legal_ground_match",
	// "keypoint_checklist", "draft:JUDICIAL_COMPLAINT").
	Type string

	// DependsOn — типы узлов, от выходов которых зависит этот узел.
	DependsOn []string
}

// Node — узел в графе зависимостей.
type Node struct {
	// Type — идентификатор узла (совпадает с NodeDef.Type).
	Type string

	// DependsOn — узлы, от которых зависит этот узел.
	DependsOn []string

	// Dependents — узлы, которые зависят от этого узла.
	Dependents []string

	// index — порядок объявления в конфигурации.
	// Используется как вторичный ключ для детерминированной сортировки.
	index int
}

// IsRoot возвращает true для узла без зависимостей.
// Корневые узлы получают payload триггера как вход.
func (n *Node) IsRoot() bool {
	return len(n.DependsOn) == 0
}

// Graph — неизменяемый граф зависимостей производных артефактов.
//
// Строится один раз из конфигурации при старте процесса и валидируется
// при построении: уникальность типов, отсутствие висячих ссылок и циклов.
// Перезагрузка конфигурации — это построение нового Graph, не мутация.
type Graph struct {
	// nodes — все узлы (type → Node).
	nodes map[string]*Node

	// order — полный топологический порядок узлов.
	// При равных возможностях раньше идёт узел, объявленный раньше,
	// поэтому два прогона с одинаковым dirty set дают одинаковый порядок.
	order []string
}

// New строит граф из объявлений узлов.
//
// Возвращает *ConfigError, если найден дубликат, висячая зависимость,
// self-dependency или цикл. Валидация выполняется здесь один раз,
// не на каждом прогоне.
func New(defs []NodeDef) (*Graph, error) {
	if len(defs) == 0 {
		return nil, NewConfigError("", "nodes", "graph has no nodes", ErrEmptyNodes)
	}

	g := &Graph{nodes: make(map[string]*Node, len(defs))}

	// Первый проход: создаём узлы
	for i := range defs {
		def := &defs[i]

		if def.Type == "" {
			return nil, NewConfigError("", "type",
				fmt.Sprintf("node %d has empty type", i), ErrEmptyNodeType)
		}
		if _, exists := g.nodes[def.Type]; exists {
			return nil, NewConfigError(def.Type, "type",
				fmt.Sprintf("duplicate node type: %s", def.Type), ErrDuplicateNodeType)
		}

		g.nodes[def.Type] = &Node{
			Type:      def.Type,
			DependsOn: append([]string(nil), def.DependsOn...),
			index:     i,
		}
	}

	// Второй проход: проверяем ссылки и связываем dependents
	for i := range defs {
		def := &defs[i]
		for _, dep := range def.DependsOn {
			if dep == def.Type {
				return nil, NewConfigError(def.Type, "depends_on",
					"node depends on itself", ErrSelfDependency)
			}
			depNode, exists := g.nodes[dep]
			if !exists {
				return nil, NewConfigError(def.Type, "depends_on",
					fmt.Sprintf("depends on unknown node: %s", dep), ErrUnknownDependency)
			}
			depNode.Dependents = append(depNode.Dependents, def.Type)
		}
	}

	// Топологическая сортировка — заодно детектирует циклы
	order, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}
	g.order = order

	return g, nil
}

// topologicalSort выполняет детерминированную топологическую сортировку
// (алгоритм Кана). Среди узлов с нулевой входящей степенью всегда выбирается
// объявленный раньше. Возвращает ошибку, если обнаружен цикл.
func (g *Graph) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node.Type] = len(node.DependsOn)
	}

	order := make([]string, 0, len(g.nodes))
	done := make(map[string]bool, len(g.nodes))

	for len(order) < len(g.nodes) {
		// Выбираем среди готовых узел с минимальным index
		next := ""
		nextIndex := -1
		for t, node := range g.nodes {
			if done[t] || inDegree[t] != 0 {
				continue
			}
			if nextIndex < 0 || node.index < nextIndex {
				next = t
				nextIndex = node.index
			}
		}

		// Нет готовых узлов, но обработаны не все — цикл
		if nextIndex < 0 {
			return nil, NewConfigError("", "depends_on",
				"cyclic dependency detected", ErrCyclicDependency)
		}

		done[next] = true
		order = append(order, next)

		for _, dependent := range g.nodes[next].Dependents {
			inDegree[dependent]--
		}
	}

	return order, nil
}

// Node возвращает узел по типу. Nil, если узла нет.
func (g *Graph) Node(nodeType string) *Node {
	return g.nodes[nodeType]
}

// Has проверяет, есть ли узел в графе.
func (g *Graph) Has(nodeType string) bool {
	_, exists := g.nodes[nodeType]
	return exists
}

// Size возвращает количество узлов в графе.
func (g *Graph) Size() int {
	return len(g.nodes)
}

// Order возвращает полный топологический порядок узлов.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Descendants возвращает seed-узлы плюс все узлы, транзитивно зависящие
// от любого из них, в топологическом порядке: ни один узел не идёт
// раньше своих зависимостей.
//
// Неизвестные seed-типы игнорируются (валидация trigger table отлавливает
// их при загрузке конфигурации).
func (g *Graph) Descendants(seeds []string) []string {
	inScope := make(map[string]bool, len(seeds))

	// BFS вниз по dependents от каждого seed
	queue := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		if g.Has(seed) && !inScope[seed] {
			inScope[seed] = true
			queue = append(queue, seed)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dependent := range g.nodes[current].Dependents {
			if !inScope[dependent] {
				inScope[dependent] = true
				queue = append(queue, dependent)
			}
		}
	}

	// Фильтруем полный топологический порядок по scope —
	// порядок получается детерминированным автоматически
	result := make([]string, 0, len(inScope))
	for _, t := range g.order {
		if inScope[t] {
			result = append(result, t)
		}
	}
	return result
}
