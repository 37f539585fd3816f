// Package graph реализует статический граф зависимостей производных
// артефактов дела и trigger table.
//
// Граф описывает, какие артефакты от каких зависят ("checklist строится
// по keypoints, keypoints — по legal ground matches"), и отвечает на два
// вопроса оркестратора:
//   - какие узлы затронуты данным набором грязных seed-узлов
//     (Descendants — seeds плюс транзитивные dependents)
//   - в каком порядке их пересчитывать (детерминированная
//     топологическая сортировка)
//
// Вся валидация (циклы, висячие ссылки, неизвестные seeds) выполняется
// при построении и возвращает ConfigError; во время прогона граф
// только читается.
package graph
