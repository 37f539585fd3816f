// Package recompute определяет интерфейс пересчёта артефактов
// и реестр recomputer-ов по типу узла.
//
// Оркестратор не знает, как вычисляется значение узла — он решает только,
// нужно ли пересчитывать и в каком порядке. Сам пересчёт делегируется
// recomputer-у узла: в продакшене это HTTP-вызов соответствующего
// сервиса (HTTPRecomputer), в тестах — FuncRecomputer.
package recompute
